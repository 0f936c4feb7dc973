package handlers

import (
	"net/http"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/api/response"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/gui"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// RecommendationRequest is the body of POST /recommendations.
// Picks are hero ids or names in pick order.
type RecommendationRequest struct {
	Picks []string `json:"picks"`
}

// RecommendationView is the recommended hero with its portrait.
type RecommendationView struct {
	recommend.Result
	PortraitURL string `json:"portrait_url,omitempty"`
}

// RecommendationHandler handles recommendation API requests.
type RecommendationHandler struct {
	facade *gui.DraftFacade
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(facade *gui.DraftFacade) *RecommendationHandler {
	return &RecommendationHandler{facade: facade}
}

// Recommend returns the next-hero recommendation for the given picks. When no
// strategy produces a hero the response is 200 with null data and a message.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	resp, err := h.facade.Recommend(r.Context(), req.Picks)
	if err != nil {
		writeError(w, err)
		return
	}

	if resp.Result == nil {
		response.SuccessWithMessage(w, nil, resp.Message)
		return
	}
	response.Success(w, RecommendationView{Result: *resp.Result, PortraitURL: resp.PortraitURL})
}

// Tally returns the pattern vote table for the given picks.
func (h *RecommendationHandler) Tally(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	candidates, err := h.facade.Tally(r.Context(), req.Picks)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, candidates)
}
