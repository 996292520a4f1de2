package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidProfile  = errors.New("profile name is required")
	ErrDuplicateName   = errors.New("a profile with this name already exists")
	ErrSystemProfile   = errors.New("system profiles cannot be changed")
	ErrProfileHasUsers = errors.New("profile still has users assigned")
	ErrInvalidGrant    = errors.New("permission needs a screen_key and an action")
)

type Profile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsSystem    bool      `json:"is_system"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewProfile struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ProfilePatch edits a profile. Nil fields are left unchanged.
type ProfilePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Grant is one stored permission row. Denied rows are kept so the editor
// can show a disabled toggle.
type Grant struct {
	ScreenKey string `json:"screen_key"`
	Action    string `json:"action"`
	Allowed   bool   `json:"allowed"`
}

// ProfilePermissions is the editor payload. System profiles bypass grants,
// so their list is always empty.
type ProfilePermissions struct {
	IsSystemProfile bool    `json:"isSystemProfile"`
	Permissions     []Grant `json:"permissions"`
}
