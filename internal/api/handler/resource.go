package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/lighthouse/internal/api/request"
	"github.com/mcoot/lighthouse/internal/api/response"
	"github.com/mcoot/lighthouse/internal/services/resource"
)

// Upload and list size limits
const (
	maxResourceSize = 64 << 20
	maxListBody     = 1 << 20
)

// ResourceHandler handles resource upload, download and filtering
type ResourceHandler struct {
	gate *resource.Gate
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(gate *resource.Gate) *ResourceHandler {
	return &ResourceHandler{gate: gate}
}

// Upload handles POST /LITTLEBIGPLANETPS3_XML/upload/{hash}
func (h *ResourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxResourceSize))
	if err != nil {
		WriteGameError(w, NewInvalidRequestError("unreadable body"))
		return
	}

	if _, err := h.gate.Upload(r.Context(), hash, data); err != nil {
		WriteGameError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Download handles GET /LITTLEBIGPLANETPS3_XML/r/{hash}
func (h *ResourceHandler) Download(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]

	kind, err := h.gate.KindOf(r.Context(), hash)
	if err != nil {
		WriteGameError(w, err)
		return
	}
	data, err := h.gate.Read(r.Context(), hash)
	if err != nil {
		WriteGameError(w, err)
		return
	}

	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Filter handles POST /LITTLEBIGPLANETPS3_XML/filterResources
func (h *ResourceHandler) Filter(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxListBody))
	if err != nil {
		WriteGameError(w, NewInvalidRequestError("unreadable body"))
		return
	}
	hashes, err := request.ParseResourceList(body)
	if err != nil {
		WriteGameError(w, NewInvalidRequestError(err.Error()))
		return
	}

	missing, err := h.gate.MissingResources(r.Context(), hashes)
	if err != nil {
		WriteGameError(w, err)
		return
	}

	response.XML(w, http.StatusOK, response.ResourceList{Resources: missing})
}
