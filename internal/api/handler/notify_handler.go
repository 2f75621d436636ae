package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tallerapp/notifier/internal/domain"
	"github.com/tallerapp/notifier/internal/orchestrator"
	"github.com/tallerapp/notifier/internal/repository"
	"github.com/tallerapp/notifier/internal/worker"
)

// NotifyHandler exposes the notification pipeline over HTTP. The shop
// backend calls it after the order mutation has committed; the notification
// outcome is reported separately and never affects that mutation.
type NotifyHandler struct {
	orch   *orchestrator.Orchestrator
	q      *worker.Queue
	logs   repository.DeliveryLogRepository
	logger *zap.Logger
}

func NewNotifyHandler(
	orch *orchestrator.Orchestrator,
	q *worker.Queue,
	logs repository.DeliveryLogRepository,
	logger *zap.Logger,
) *NotifyHandler {
	return &NotifyHandler{orch: orch, q: q, logs: logs, logger: logger}
}

// stateChangeRequest is the inbound payload for a state transition trigger.
type stateChangeRequest struct {
	PreviousState string `json:"previous_state"`
	NewState      string `json:"new_state"`
}

// Notify handles POST /api/v1/orders/{id}/notifications
//
// By default the pipeline runs synchronously and the aggregated result is
// returned. With ?async=1 the job is queued and 202 returned immediately.
func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	if isAsync(r) {
		h.enqueue(w, worker.Job{OrderID: orderID, Trigger: domain.TriggerCreated})
		return
	}

	res := h.orch.Process(r.Context(), orderID)
	respondResult(w, res)
}

// StateChange handles POST /api/v1/orders/{id}/state-changes
func (h *NotifyHandler) StateChange(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req stateChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PreviousState == "" || req.NewState == "" {
		mapError(w, domain.ErrInvalidState)
		return
	}

	if isAsync(r) {
		h.enqueue(w, worker.Job{
			OrderID:       orderID,
			Trigger:       domain.TriggerStateChanged,
			PreviousState: req.PreviousState,
			NewState:      req.NewState,
		})
		return
	}

	res := h.orch.ProcessStateChange(r.Context(), orderID, req.PreviousState, req.NewState)
	respondResult(w, res)
}

// ChannelsStatus handles GET /api/v1/channels/status
func (h *NotifyHandler) ChannelsStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.orch.ServicesStatus())
}

// Deliveries handles GET /api/v1/deliveries?limit=N
func (h *NotifyHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.logs.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list deliveries", zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deliveries": entries})
}

func (h *NotifyHandler) enqueue(w http.ResponseWriter, job worker.Job) {
	if err := h.q.Enqueue(job); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]any{
		"status":   "queued",
		"order_id": job.OrderID,
	})
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "order id must be a positive integer")
		return 0, false
	}
	return id, true
}

// respondResult keeps the HTTP status aligned with the result: an order that
// could not even be fetched is a 404, anything else is a 200 with the
// per-channel outcomes for the caller to relay.
func respondResult(w http.ResponseWriter, res domain.NotificationResult) {
	if res.FetchFailed() {
		respondJSON(w, http.StatusNotFound, res)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func isAsync(r *http.Request) bool {
	v := r.URL.Query().Get("async")
	return v == "1" || v == "true"
}
