package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/api/response"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/gui"
)

// HeroHandler handles hero catalog API requests.
type HeroHandler struct {
	facade *gui.HeroFacade
}

// NewHeroHandler creates a new HeroHandler.
func NewHeroHandler(facade *gui.HeroFacade) *HeroHandler {
	return &HeroHandler{facade: facade}
}

// GetHeroes returns the full hero catalog.
func (h *HeroHandler) GetHeroes(w http.ResponseWriter, r *http.Request) {
	heroes, err := h.facade.ListHeroes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, heroes)
}

// SearchHeroes fuzzy-matches hero names against the q parameter.
func (h *HeroHandler) SearchHeroes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	results, err := h.facade.SearchHeroes(r.Context(), query, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, results)
}
