package domain

import (
	"errors"
	"time"
)

var (
	ErrMissingToken       = errors.New("authorization token not provided")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotConfigured      = errors.New("supabase auth is not configured")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCaptchaRequired    = errors.New("captcha verification required")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthUser is the identity returned by Supabase Auth for a bearer token.
type AuthUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Claims rebuilds the JWT claim set PostgREST would see for this user.
func (u *AuthUser) Claims() map[string]any {
	role := u.Role
	if role == "" {
		role = "authenticated"
	}
	return map[string]any{
		"sub":           u.ID,
		"email":         u.Email,
		"role":          role,
		"app_metadata":  u.AppMetadata,
		"user_metadata": u.UserMetadata,
	}
}

// Session is the token pair issued on a successful password login.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	User         *AuthUser `json:"user"`
}

// PlatformUser is the application's own row in public.users.
type PlatformUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	Role       string    `json:"role"`
	ProfileID  *int64    `json:"profile_id,omitempty"`
	EmployeeID *string   `json:"employee_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttemptStatus describes failed password logins seen from one client IP.
type AttemptStatus struct {
	FailedAttempts  int  `json:"failedAttempts"`
	RequiresCaptcha bool `json:"requiresCaptcha"`
	IsBlocked       bool `json:"isBlocked"`
}

const (
	AttemptWindow    = 15 * time.Minute
	CaptchaThreshold = 3
	MaxAttempts      = 5
)

func NewAttemptStatus(count int) AttemptStatus {
	return AttemptStatus{
		FailedAttempts:  count,
		RequiresCaptcha: count >= CaptchaThreshold,
		IsBlocked:       count >= MaxAttempts,
	}
}
