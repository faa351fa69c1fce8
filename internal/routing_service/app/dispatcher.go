package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
	"github.com/dpi/sms-rule-based/internal/routing_service/gateway"
)

// Dispatcher delivers a routed message: each gateway's recipient group goes
// out through that gateway, and the per-gateway results are merged into one
// aggregate report.
type Dispatcher struct {
	gateways           map[string]gateway.Gateway // keyed by gateway id
	defaultGatewayName string
	logger             *slog.Logger
}

// NewDispatcher creates a new Dispatcher. defaultGatewayName resolves the
// reserved __default__ route.
func NewDispatcher(gateways map[string]gateway.Gateway, defaultGatewayName string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		gateways:           gateways,
		defaultGatewayName: defaultGatewayName,
		logger:             logger.With("component", "dispatcher"),
	}
}

// DispatchRouted sends each non-empty route group through its gateway and
// merges the results. Gateway failures are reflected in the merged result;
// recipients are never dropped from the report.
func (d *Dispatcher) DispatchRouted(ctx context.Context, msg *domain.Message, routing *domain.RoutingResult) *domain.MessageResult {
	gatewayIDs := make([]string, 0, len(routing.Routes))
	for id := range routing.Routes {
		gatewayIDs = append(gatewayIDs, id)
	}
	sort.Strings(gatewayIDs)

	var results []*domain.MessageResult
	for _, gatewayID := range gatewayIDs {
		numbers := routing.Routes[gatewayID]
		if len(numbers) == 0 {
			continue
		}

		name := gatewayID
		if gatewayID == domain.DefaultGateway {
			name = d.defaultGatewayName
		}
		gw, ok := d.gateways[name]
		if !ok {
			d.logger.ErrorContext(ctx, "Route matched, but gateway is not configured",
				"gateway", name, "message_id", msg.ID, "recipients", len(numbers))
			results = append(results, &domain.MessageResult{
				Status:       false,
				ErrorMessage: fmt.Sprintf("gateway %q not configured", name),
				Reports:      make(map[string]domain.DeliveryReport),
			})
			dispatchResultsCounter.WithLabelValues(name, "error_no_gateway").Inc()
			continue
		}

		routed := *msg
		routed.Recipients = numbers

		result, err := gw.Send(ctx, &routed)
		if err != nil {
			d.logger.ErrorContext(ctx, "Gateway send failed",
				"gateway", gw.GetName(), "message_id", msg.ID, "error", err)
			if result == nil {
				result = &domain.MessageResult{
					ErrorMessage: err.Error(),
					Reports:      make(map[string]domain.DeliveryReport),
				}
			}
			result.Status = false
			results = append(results, result)
			dispatchResultsCounter.WithLabelValues(gw.GetName(), "error_send").Inc()
			continue
		}

		d.logger.InfoContext(ctx, "Gateway accepted recipient group",
			"gateway", gw.GetName(), "message_id", msg.ID,
			"recipients", len(numbers), "reports", len(result.Reports))
		results = append(results, result)
		dispatchResultsCounter.WithLabelValues(gw.GetName(), "success").Inc()
	}

	return domain.MergeMessageResults(results)
}
