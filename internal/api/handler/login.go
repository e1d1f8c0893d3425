package handler

import (
	"net"
	"net/http"

	"github.com/mcoot/lighthouse/internal/api/response"
	"github.com/mcoot/lighthouse/internal/services/auth"
)

// LoginHandler signs game clients in
type LoginHandler struct {
	authService *auth.Service
	serverName  string
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(authService *auth.Service, serverName string) *LoginHandler {
	return &LoginHandler{
		authService: authService,
		serverName:  serverName,
	}
}

// Login handles POST /LITTLEBIGPLANETPS3_XML/login?titleID=
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteGameError(w, NewInvalidRequestError("invalid form"))
		return
	}

	token, err := h.authService.Authenticate(
		r.Context(),
		r.PostForm.Get("username"),
		r.PostForm.Get("password"),
		remoteHost(r),
		r.URL.Query().Get("titleID"),
	)
	if err != nil {
		WriteGameError(w, err)
		return
	}

	response.XML(w, http.StatusOK, response.NewLoginResult(token.Secret, h.serverName))
}

// remoteHost strips the port from the peer address
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
