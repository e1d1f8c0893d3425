package request

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest is the request body for logging in on the web
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
