package handler

import (
	"io"
	"net/http"

	"github.com/mcoot/lighthouse/internal/api/middleware"
	"github.com/mcoot/lighthouse/internal/api/response"
	"github.com/mcoot/lighthouse/internal/services/match"
)

// maxMatchBody bounds a match message body
const maxMatchBody = 64 << 10

// MatchHandler handles the game's matchmaking endpoint
type MatchHandler struct {
	controller *match.Controller
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(controller *match.Controller) *MatchHandler {
	return &MatchHandler{controller: controller}
}

// Match handles POST /LITTLEBIGPLANETPS3_XML/match
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetGameSession(r.Context())

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMatchBody))
	if err != nil {
		WriteGameError(w, NewInvalidRequestError("unreadable body"))
		return
	}

	body, err := h.controller.Handle(r.Context(), *session.User, session.Token.NetworkLocation, string(raw))
	if err != nil {
		WriteGameError(w, err)
		return
	}

	response.Text(w, http.StatusOK, string(body))
}
