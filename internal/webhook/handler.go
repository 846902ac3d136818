// Package webhook is the HTTP boundary for Slack event subscriptions.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sells-group/community-sync/internal/monitoring"
	"github.com/sells-group/community-sync/internal/pipeline"
)

// Runner runs the resolution pipeline for one member.
type Runner interface {
	Run(ctx context.Context, user pipeline.User) *pipeline.Outcome
}

// Handler verifies and dispatches inbound Slack events.
type Handler struct {
	token   string
	runner  Runner
	dedupe  *Deduper
	metrics *monitoring.Collector

	// base carries the server context's values but not its cancellation:
	// event processing outlives both the HTTP request that delivered it
	// and server shutdown. Wait is what bounds in-flight work.
	base context.Context
	wg   sync.WaitGroup
}

// NewHandler creates a Handler. Runs dispatched before shutdown complete
// even after base is cancelled; callers drain them with Wait.
func NewHandler(base context.Context, token string, runner Runner, dedupe *Deduper, metrics *monitoring.Collector) *Handler {
	return &Handler{
		token:   token,
		runner:  runner,
		dedupe:  dedupe,
		metrics: metrics,
		base:    context.WithoutCancel(base),
	}
}

// Router builds the HTTP routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/", h.handleEvent)
	r.Get("/health", h.handleHealth)
	return r
}

// Wait blocks until all in-flight event processing finishes.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// eventPayload is the subset of the Slack event envelope we consume.
type eventPayload struct {
	Token     string `json:"token"`
	Challenge string `json:"challenge"`
	Event     struct {
		Type string `json:"type"`
		User struct {
			ID      string `json:"id"`
			Profile struct {
				DisplayName string `json:"display_name"`
				RealName    string `json:"real_name"`
			} `json:"profile"`
		} `json:"user"`
	} `json:"event"`
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if payload.Token != h.token {
		zap.L().Warn("webhook: rejected event with bad token")
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	// One-time endpoint verification: echo the challenge verbatim.
	if payload.Challenge != "" {
		zap.L().Info("webhook: url verification challenge")
		w.Write([]byte(payload.Challenge)) //nolint:errcheck
		return
	}

	user := pipeline.User{
		ID:          payload.Event.User.ID,
		DisplayName: payload.Event.User.Profile.DisplayName,
		RealName:    payload.Event.User.Profile.RealName,
	}

	// The caller always sees success; processing happens after the
	// response and surfaces only in logs and counters.
	w.Write([]byte("ok")) //nolint:errcheck

	if user.ID == "" {
		zap.L().Warn("webhook: event without user id", zap.String("event_type", payload.Event.Type))
		return
	}

	if h.dedupe.Seen(user.ID) {
		zap.L().Info("webhook: duplicate event collapsed", zap.String("user_id", user.ID))
		h.metrics.RecordDuplicate()
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		out := h.runner.Run(h.base, user)
		h.metrics.Record(out)
	}()
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"status": "ok",
		"events": h.metrics.Collect(),
	})
}
