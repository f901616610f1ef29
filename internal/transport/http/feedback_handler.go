package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"hindi-drill-service/internal/app"
	"hindi-drill-service/internal/feedback"
)

// FeedbackHandler exposes the scorer to external evaluators (e.g., the speech
// analysis pipeline) over plain HTTP.
type FeedbackHandler struct {
	service *app.DrillService
	log     *zap.Logger
}

func NewFeedbackHandler(service *app.DrillService, log *zap.Logger) *FeedbackHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeedbackHandler{service: service, log: log}
}

// ServeHTTP handles POST /api/feedback with an AnalysisInput body.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var analysis feedback.AnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&analysis); err != nil {
		http.Error(w, "invalid analysis payload", http.StatusBadRequest)
		return
	}

	bundle := h.service.Feedback(analysis)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(bundle); err != nil {
		h.log.Debug("feedback encode failed", zap.Error(err))
	}
}
