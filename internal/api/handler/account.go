package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/lighthouse/internal/api/middleware"
	"github.com/mcoot/lighthouse/internal/api/request"
	"github.com/mcoot/lighthouse/internal/api/response"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/auth"
)

// AccountHandler handles web accounts and game login approval
type AccountHandler struct {
	authService *auth.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service) *AccountHandler {
	return &AccountHandler{
		authService: authService,
	}
}

// Register handles POST /api/v1/users/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	token, err := h.authService.Register(r.Context(), req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		WriteError(w, err)
		return
	}

	setSessionCookie(w, token)
	response.JSON(w, http.StatusCreated, response.AuthResponse{
		User:         response.User{ID: string(token.UserID), Username: strings.TrimSpace(req.Username)},
		SessionToken: token.Secret,
	})
}

// Login handles POST /api/v1/users/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	token, err := h.authService.WebLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	setSessionCookie(w, token)
	response.JSON(w, http.StatusOK, response.AuthResponse{
		User:         response.User{ID: string(token.UserID), Username: req.Username},
		SessionToken: token.Secret,
	})
}

// GetMe handles GET /api/v1/users/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetWebUser(r.Context())
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// PendingTokens handles GET /api/v1/tokens
func (h *AccountHandler) PendingTokens(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetWebUser(r.Context())

	tokens, err := h.authService.PendingTokens(r.Context(), user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameTokensFromModel(tokens))
}

// ApproveToken handles POST /api/v1/tokens/{id}/approve
func (h *AccountHandler) ApproveToken(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetWebUser(r.Context())
	id := model.TokenID(mux.Vars(r)["id"])

	if err := h.authService.ApproveToken(r.Context(), user.ID, id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// DenyToken handles DELETE /api/v1/tokens/{id}
func (h *AccountHandler) DenyToken(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetWebUser(r.Context())
	id := model.TokenID(mux.Vars(r)["id"])

	if err := h.authService.DenyToken(r.Context(), user.ID, id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

func setSessionCookie(w http.ResponseWriter, token *model.WebToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.WebCookie,
		Value:    token.Secret,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
