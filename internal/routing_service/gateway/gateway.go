package gateway

import (
	"context"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
)

// Gateway submits one message's recipient group to a delivery channel. The
// routing engine decides which recipients go to which gateway; a Gateway
// only delivers what it is handed.
type Gateway interface {
	Send(ctx context.Context, msg *domain.Message) (*domain.MessageResult, error)
	GetName() string
}
