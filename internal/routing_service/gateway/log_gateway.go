package gateway

import (
	"context"
	"log/slog"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
	"github.com/google/uuid"
)

// LogGateway is a delivery sink that only logs what it would send. It is the
// conventional target for debug rulesets so test traffic never runs down
// credit on a paid gateway.
type LogGateway struct {
	name   string
	logger *slog.Logger
}

// NewLogGateway creates a LogGateway registered under the given name.
func NewLogGateway(name string, logger *slog.Logger) *LogGateway {
	return &LogGateway{name: name, logger: logger.With("gateway", name)}
}

func (g *LogGateway) GetName() string { return g.name }

// Send logs the message and reports every recipient as delivered at no cost.
func (g *LogGateway) Send(ctx context.Context, msg *domain.Message) (*domain.MessageResult, error) {
	g.logger.InfoContext(ctx, "LogGateway: message logged instead of sent",
		"message_id", msg.ID,
		"sender", msg.Sender,
		"recipients", len(msg.Recipients),
		"body_length", len(msg.Body))

	result := &domain.MessageResult{
		Status:  true,
		Reports: make(map[string]domain.DeliveryReport, len(msg.Recipients)),
	}
	for _, recipient := range msg.Recipients {
		result.Reports[recipient] = domain.DeliveryReport{
			Recipient: recipient,
			MessageID: "log-" + uuid.NewString(),
			Status:    "LOGGED",
			Gateway:   g.name,
		}
	}
	return result, nil
}
