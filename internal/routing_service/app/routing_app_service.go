package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dpi/sms-rule-based/internal/platform/messagebroker"
	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
)

// RoutingJobPayload is the message expected on the routing job subject.
type RoutingJobPayload struct {
	MessageID   string   `json:"message_id"`
	Sender      string   `json:"sender"`
	Body        string   `json:"body"`
	Recipients  []string `json:"recipients"`
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	IsSuperuser bool     `json:"is_superuser"`
	// SendTime as unix seconds; zero means "now".
	SendTime int64 `json:"send_time,omitempty"`
}

// RoutingOutcome is published after a job is processed.
type RoutingOutcome struct {
	MessageID string                `json:"message_id"`
	Accepted  bool                  `json:"accepted"`
	Reason    string                `json:"reason,omitempty"`
	Routing   *domain.RoutingResult `json:"routing,omitempty"`
	Result    *domain.MessageResult `json:"result,omitempty"`
}

// RoutingAppService orchestrates one routing job: sender-id check, rule-based
// partitioning, per-gateway dispatch, and publication of the outcome.
type RoutingAppService struct {
	router     *Router
	dispatcher *Dispatcher
	filter     *SenderIDFilter
	natsClient *messagebroker.NatsClient
	logger     *slog.Logger
	// ruleBasedRoutingEnabled switches the engine off entirely; when false
	// every recipient is routed through the default gateway.
	ruleBasedRoutingEnabled bool
	natsSub                 *nats.Subscription
}

// NewRoutingAppService creates a new RoutingAppService.
func NewRoutingAppService(
	router *Router,
	dispatcher *Dispatcher,
	filter *SenderIDFilter,
	natsClient *messagebroker.NatsClient,
	logger *slog.Logger,
	ruleBasedRoutingEnabled bool,
) *RoutingAppService {
	return &RoutingAppService{
		router:                  router,
		dispatcher:              dispatcher,
		filter:                  filter,
		natsClient:              natsClient,
		logger:                  logger.With("service", "routing_app"),
		ruleBasedRoutingEnabled: ruleBasedRoutingEnabled,
	}
}

// StartConsumingJobs subscribes to the NATS subject for routing jobs.
func (s *RoutingAppService) StartConsumingJobs(ctx context.Context, subject, queueGroup, outcomeSubject string) error {
	if s.natsClient == nil {
		return errors.New("NATS client not initialized in RoutingAppService")
	}
	s.logger.Info("Starting NATS job consumer", "subject", subject, "queue_group", queueGroup)

	msgHandler := func(msg *nats.Msg) {
		natsRoutingJobsReceivedCounter.WithLabelValues(msg.Subject).Inc()
		s.logger.Info("Received NATS routing job", "subject", msg.Subject, "data_len", len(msg.Data))

		var job RoutingJobPayload
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			s.logger.Error("Failed to unmarshal NATS job payload", "error", err, "data", string(msg.Data))
			return
		}

		jobCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		outcome := s.ProcessRoutingJob(jobCtx, job)
		if data, err := json.Marshal(outcome); err != nil {
			s.logger.Error("Failed to marshal routing outcome", "error", err, "message_id", job.MessageID)
		} else if err := s.natsClient.Publish(jobCtx, outcomeSubject, data); err != nil {
			s.logger.Error("Failed to publish routing outcome", "error", err, "subject", outcomeSubject, "message_id", job.MessageID)
		}
	}

	var err error
	s.natsSub, err = s.natsClient.Subscribe(ctx, subject, queueGroup, msgHandler)
	if err != nil {
		return fmt.Errorf("failed to subscribe to NATS subject '%s': %w", subject, err)
	}
	return nil
}

// ProcessRoutingJob handles the logic for a single routing job.
func (s *RoutingAppService) ProcessRoutingJob(ctx context.Context, job RoutingJobPayload) *RoutingOutcome {
	user := domain.User{ID: job.UserID, Username: job.Username, IsSuperuser: job.IsSuperuser}

	allowed, matchedPattern := s.filter.IsAllowed(job.Sender, user)
	if !allowed {
		senderIDChecksCounter.WithLabelValues("denied").Inc()
		s.logger.InfoContext(ctx, "Sender id denied for user",
			"sender", job.Sender, "username", job.Username, "matched_pattern", matchedPattern, "message_id", job.MessageID)
		return &RoutingOutcome{
			MessageID: job.MessageID,
			Accepted:  false,
			Reason:    fmt.Sprintf("sender id %q is restricted (matched %q)", job.Sender, matchedPattern),
		}
	}
	senderIDChecksCounter.WithLabelValues("allowed").Inc()

	msg := &domain.Message{
		ID:         job.MessageID,
		Sender:     job.Sender,
		Body:       job.Body,
		UserID:     job.UserID,
		Username:   job.Username,
		Recipients: job.Recipients,
		SendTime:   time.Now().UTC(),
	}
	if job.SendTime != 0 {
		msg.SendTime = time.Unix(job.SendTime, 0).UTC()
	}

	routing, err := s.routeMessage(ctx, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "Routing failed", "error", err, "message_id", job.MessageID)
		return &RoutingOutcome{
			MessageID: job.MessageID,
			Accepted:  false,
			Reason:    fmt.Sprintf("routing error: %v", err),
		}
	}
	for gatewayID, numbers := range routing.Routes {
		routingRecipientsRoutedCounter.WithLabelValues(gatewayID).Add(float64(len(numbers)))
	}

	result := s.dispatcher.DispatchRouted(ctx, msg, routing)
	s.logger.InfoContext(ctx, "Routing job processed",
		"message_id", job.MessageID, "gateways", len(routing.Routes), "status", result.Status)

	return &RoutingOutcome{
		MessageID: job.MessageID,
		Accepted:  true,
		Routing:   routing,
		Result:    result,
	}
}

// routeMessage runs the rule engine, or sends everything to the default
// gateway when rule-based routing is switched off.
func (s *RoutingAppService) routeMessage(ctx context.Context, msg *domain.Message) (*domain.RoutingResult, error) {
	if !s.ruleBasedRoutingEnabled {
		recipients := make([]string, len(msg.Recipients))
		copy(recipients, msg.Recipients)
		return &domain.RoutingResult{
			Routes: map[string][]string{domain.DefaultGateway: recipients},
			Order:  map[string][]string{domain.DefaultGateway: recipients},
		}, nil
	}

	timer := prometheus.NewTimer(routingDecisionDurationHist)
	defer timer.ObserveDuration()
	return s.router.Route(ctx, msg)
}

// StopConsumingJobs unsubscribes from NATS.
func (s *RoutingAppService) StopConsumingJobs() {
	if s.natsSub != nil && s.natsSub.IsValid() {
		s.logger.Info("Unsubscribing from NATS job subject", "subject", s.natsSub.Subject)
		if err := s.natsSub.Unsubscribe(); err != nil {
			s.logger.Error("Failed to unsubscribe from NATS", "error", err, "subject", s.natsSub.Subject)
		}
	}
}
