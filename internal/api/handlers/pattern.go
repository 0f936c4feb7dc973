package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/api/response"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/gui"
)

// PatternHandler handles pattern set API requests.
type PatternHandler struct {
	facade *gui.PatternFacade
}

// NewPatternHandler creates a new PatternHandler.
func NewPatternHandler(facade *gui.PatternFacade) *PatternHandler {
	return &PatternHandler{facade: facade}
}

// GetPatterns returns the active set's status and its top patterns by support.
func (h *PatternHandler) GetPatterns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	patterns, err := h.facade.ListPatterns(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, patterns)
}

// RefreshPatterns starts the refresh pipeline. By default the run happens in
// the background (202, completion is broadcast as patterns:refreshed);
// ?wait=true runs it within the request and returns the report.
func (h *PatternHandler) RefreshPatterns(w http.ResponseWriter, r *http.Request) {
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		report, err := h.facade.RefreshPatterns(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		response.Success(w, report)
		return
	}

	started, err := h.facade.StartRefresh(nil)
	if err != nil {
		writeError(w, err)
		return
	}
	if !started {
		response.Conflict(w, errors.New("a refresh is already running"))
		return
	}

	response.Accepted(w, map[string]string{"status": "started"})
}

// GetStatus returns the active pattern set's status.
func (h *PatternHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]interface{}{
		"pattern_set": h.facade.GetStatus(),
		"refreshing":  h.facade.Refreshing(),
	})
}
