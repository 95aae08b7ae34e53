package handlers

import "net/http"

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.planner.GetAggregateInfo(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"info": info})
}

func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.planner.GetUserBreakdown(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"info": breakdown})
}
