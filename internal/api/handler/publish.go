package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/lighthouse/internal/api/middleware"
	"github.com/mcoot/lighthouse/internal/api/request"
	"github.com/mcoot/lighthouse/internal/api/response"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/publish"
)

// maxSlotBody bounds a slot document
const maxSlotBody = 1 << 20

// PublishHandler handles level publishing
type PublishHandler struct {
	publishService *publish.Service
}

// NewPublishHandler creates a new publish handler
func NewPublishHandler(publishService *publish.Service) *PublishHandler {
	return &PublishHandler{publishService: publishService}
}

// StartPublish handles POST /LITTLEBIGPLANETPS3_XML/startPublish
func (h *PublishHandler) StartPublish(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetGameSession(r.Context())

	draft, ok := readDraft(w, r)
	if !ok {
		return
	}

	missing, err := h.publishService.StartPublish(r.Context(), session.User, draft)
	if err != nil {
		WriteGameError(w, err)
		return
	}

	response.XML(w, http.StatusOK, response.NewMissingResources(missing))
}

// Publish handles POST /LITTLEBIGPLANETPS3_XML/publish
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetGameSession(r.Context())

	draft, ok := readDraft(w, r)
	if !ok {
		return
	}

	slot, err := h.publishService.Publish(r.Context(), session.User, session.Token.ClientVersion, draft)
	if err != nil {
		WriteGameError(w, err)
		return
	}

	response.XML(w, http.StatusOK, response.SlotFromModel(slot, session.User.Username))
}

// Unpublish handles POST /LITTLEBIGPLANETPS3_XML/unpublish/{id}
func (h *PublishHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetGameSession(r.Context())

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		WriteGameError(w, NewInvalidRequestError("invalid slot id"))
		return
	}

	err = h.publishService.Unpublish(r.Context(), session.User, model.SlotID(id))
	if errors.Is(err, publish.ErrNotOwner) {
		err = NewForbiddenError("slot belongs to another user")
	}
	if err != nil {
		WriteGameError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func readDraft(w http.ResponseWriter, r *http.Request) (*publish.Draft, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSlotBody))
	if err != nil {
		WriteGameError(w, NewInvalidRequestError("unreadable body"))
		return nil, false
	}
	draft, err := request.ParseSlot(body)
	if err != nil {
		WriteGameError(w, NewInvalidRequestError(err.Error()))
		return nil, false
	}
	return draft, true
}
