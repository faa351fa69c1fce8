package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
	"github.com/google/uuid"
)

// MockGateway is a test implementation of Gateway.
type MockGateway struct {
	name           string
	logger         *slog.Logger
	FailSend       bool          // Control whether Send should simulate failure
	SimulatedDelay time.Duration // To simulate network latency
	CreditPerSMS   float64
}

// NewMockGateway creates a new MockGateway.
func NewMockGateway(name string, logger *slog.Logger, failSend bool, delay time.Duration) *MockGateway {
	return &MockGateway{
		name:           name,
		logger:         logger.With("gateway", name),
		FailSend:       failSend,
		SimulatedDelay: delay,
		CreditPerSMS:   1.0,
	}
}

func (g *MockGateway) GetName() string { return g.name }

// Send simulates submitting the message's recipient group.
func (g *MockGateway) Send(ctx context.Context, msg *domain.Message) (*domain.MessageResult, error) {
	g.logger.InfoContext(ctx, "MockGateway: Send called",
		"message_id", msg.ID, "sender", msg.Sender, "recipients", len(msg.Recipients))

	if g.SimulatedDelay > 0 {
		time.Sleep(g.SimulatedDelay)
	}

	if g.FailSend {
		g.logger.WarnContext(ctx, "MockGateway: simulated send failure", "message_id", msg.ID)
		return &domain.MessageResult{
			Status:       false,
			ErrorMessage: "mock gateway simulated send failure",
			Reports:      make(map[string]domain.DeliveryReport),
		}, errors.New("mock gateway simulated send failure")
	}

	result := &domain.MessageResult{
		Status:      true,
		CreditsUsed: g.CreditPerSMS * float64(len(msg.Recipients)),
		Reports:     make(map[string]domain.DeliveryReport, len(msg.Recipients)),
	}
	for _, recipient := range msg.Recipients {
		result.Reports[recipient] = domain.DeliveryReport{
			Recipient: recipient,
			MessageID: "mock-" + uuid.NewString(),
			Status:    "SENT_MOCK_OK",
			Gateway:   g.name,
		}
	}
	return result, nil
}
