package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/spacesedan/nairaland/internal/planner"
)

func (h *Handler) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.planner.GetTopicByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if topic == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"topic": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": topic})
}

func (h *Handler) handleSampleTopics(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam("sample_topics", r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	topics, err := h.planner.SampleTopics(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

func (h *Handler) handleUserSearch(w http.ResponseWriter, r *http.Request) {
	params, err := userSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.planner.SearchByUser(r.Context(), params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, result)
}

func (h *Handler) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	params, err := textSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.planner.SearchByText(r.Context(), params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeResult(w, result)
}

func writeResult(w http.ResponseWriter, result planner.Result) {
	if result.Kind == planner.KindComments {
		writeJSON(w, http.StatusOK, map[string]any{"comments": result.Comments})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": result.Topics})
}
