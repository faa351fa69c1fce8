package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/dpi/sms-rule-based/internal/routing_service/app"
	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
)

// RoutingHandler exposes the rule engine and the sender-id filter for
// preview/inspection calls.
type RoutingHandler struct {
	router   *app.Router
	filter   *app.SenderIDFilter
	logger   *slog.Logger
	validate *validator.Validate
}

// NewRoutingHandler creates a new RoutingHandler.
func NewRoutingHandler(router *app.Router, filter *app.SenderIDFilter, logger *slog.Logger, validate *validator.Validate) *RoutingHandler {
	return &RoutingHandler{
		router:   router,
		filter:   filter,
		logger:   logger.With("handler", "routing"),
		validate: validate,
	}
}

// RegisterRoutes mounts the handler's endpoints on the given router.
func (h *RoutingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/routing/preview", h.HandleRoutingPreview)
	r.Post("/sender-id/check", h.HandleSenderIDCheck)
}

// HandleRoutingPreview runs a routing pass over the supplied message and
// returns the partition without dispatching.
func (h *RoutingHandler) HandleRoutingPreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req RoutingPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Failed to decode routing preview request", "error", err)
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "Failed to validate routing preview request", "error", err)
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	msg := &domain.Message{
		Sender:     req.Sender,
		Body:       req.Body,
		Username:   req.Username,
		Recipients: req.Recipients,
		SendTime:   time.Now().UTC(),
	}
	if req.SendTime != 0 {
		msg.SendTime = time.Unix(req.SendTime, 0).UTC()
	}

	routing, err := h.router.Route(ctx, msg)
	if err != nil {
		logger.ErrorContext(ctx, "Routing preview failed", "error", err)
		http.Error(w, "Routing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(newRoutingPreviewResponse(routing))
}

// HandleSenderIDCheck evaluates the sender-id restriction rules for one
// sender id and user.
func (h *RoutingHandler) HandleSenderIDCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	var req SenderIDCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Failed to decode sender-id check request", "error", err)
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "Failed to validate sender-id check request", "error", err)
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	user := domain.User{Username: req.Username, IsSuperuser: req.IsSuperuser}
	allowed, matchedPattern := h.filter.IsAllowed(req.SenderID, user)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(SenderIDCheckResponse{Allowed: allowed, MatchedPattern: matchedPattern})
}
