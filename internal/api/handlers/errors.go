package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/api/response"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/heroes"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/gui"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/refresh"
)

// writeError maps facade errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gui.ErrPickCount):
		response.BadRequest(w, err)
	case errors.Is(err, refresh.ErrRefreshInProgress):
		response.Conflict(w, err)
	case errors.Is(err, gui.ErrNotConfigured), errors.Is(err, heroes.ErrNoCatalog):
		response.ServiceUnavailable(w, err)
	default:
		response.InternalError(w, err)
	}
}
