package model

// EmailLoginRequest starts a passwordless sign-in.
type EmailLoginRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type MagicLinkResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// SessionUser is the signed-in account. ID is also the merchant id.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionResponse tells the client where to navigate: the dashboard when
// signed in, the landing page otherwise.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user"`
	RedirectTo    string       `json:"redirect_to"`
}

const (
	RedirectDashboard = "/dashboard"
	RedirectLanding   = "/"
)
