package http

import "github.com/dpi/sms-rule-based/internal/routing_service/domain"

// RoutingPreviewRequest asks the engine where a message's recipients would be
// routed, without dispatching anything.
type RoutingPreviewRequest struct {
	Sender     string   `json:"sender"`
	Body       string   `json:"body"`
	Username   string   `json:"username"`
	Recipients []string `json:"recipients" validate:"required,min=1,dive,required"`
	// SendTime as unix seconds; zero means "now".
	SendTime int64 `json:"send_time,omitempty"`
}

// RoutingPreviewResponse carries the partition the engine computed.
type RoutingPreviewResponse struct {
	Routes map[string][]string `json:"routes"`
	Order  map[string][]string `json:"order"`
}

// SenderIDCheckRequest asks whether a sender id may be used by a user.
type SenderIDCheckRequest struct {
	SenderID    string `json:"sender_id" validate:"required"`
	Username    string `json:"username" validate:"required"`
	IsSuperuser bool   `json:"is_superuser"`
}

// SenderIDCheckResponse carries the filter decision and the pattern that
// settled it.
type SenderIDCheckResponse struct {
	Allowed        bool   `json:"allowed"`
	MatchedPattern string `json:"matched_pattern,omitempty"`
}

func newRoutingPreviewResponse(result *domain.RoutingResult) RoutingPreviewResponse {
	return RoutingPreviewResponse{Routes: result.Routes, Order: result.Order}
}
