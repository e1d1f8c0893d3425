package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/mcoot/lighthouse/internal/api/middleware"
	"github.com/mcoot/lighthouse/internal/api/response"
)

const licenseNotice = `
This server is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or (at your
option) any later version.
`

// maxFilterBody bounds text sent through the filter
const maxFilterBody = 16 << 10

// MessageHandler serves the game's text endpoints
type MessageHandler struct {
	eulaText string
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(eulaText string) *MessageHandler {
	return &MessageHandler{eulaText: eulaText}
}

// Eula handles GET /LITTLEBIGPLANETPS3_XML/eula
func (h *MessageHandler) Eula(w http.ResponseWriter, r *http.Request) {
	response.Text(w, http.StatusOK, h.eulaText+"\n"+licenseNotice)
}

// Announce handles GET /LITTLEBIGPLANETPS3_XML/announce
func (h *MessageHandler) Announce(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetGameSession(r.Context())
	text := fmt.Sprintf("You are now logged in as %s.\n\n%s", session.User.Username, h.eulaText)
	if !session.Token.Approved {
		text = fmt.Sprintf("Please approve this login for %s on the website, then sign in again.\n\n%s",
			session.User.Username, h.eulaText)
	}
	response.Text(w, http.StatusOK, text)
}

// Notification handles GET /LITTLEBIGPLANETPS3_XML/notification
func (h *MessageHandler) Notification(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Filter handles POST /LITTLEBIGPLANETPS3_XML/filter. Text is returned
// unchanged.
func (h *MessageHandler) Filter(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFilterBody))
	if err != nil {
		WriteGameError(w, NewInvalidRequestError("unreadable body"))
		return
	}
	response.Text(w, http.StatusOK, string(body))
}
