package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrNoProfile        = errors.New("user has no access profile")
	ErrProfileNotFound  = errors.New("access profile not found")
	ErrProfileInactive  = errors.New("access profile is inactive")
	ErrPermissionDenied = errors.New("permission denied")
)

// Actions used by route guards.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionExport = "export"
	ActionImport = "import"
)

type Permission struct {
	ScreenKey string `json:"screen_key"`
	Action    string `json:"action"`
}

// Subject is everything needed to answer a permission check for one user.
type Subject struct {
	UserFound    bool         `json:"user_found"`
	ProfileID    *int64       `json:"profile_id"`
	ProfileFound bool         `json:"profile_found"`
	IsSystem     bool         `json:"is_system"`
	IsActive     bool         `json:"is_active"`
	Allowed      []Permission `json:"allowed"`
}

// Check walks the same order as the route guard: user, profile, activity,
// system bypass, then the explicit grant.
func (s Subject) Check(screenKey, action string) error {
	switch {
	case !s.UserFound:
		return ErrUserNotFound
	case s.ProfileID == nil:
		return ErrNoProfile
	case !s.ProfileFound:
		return ErrProfileNotFound
	case !s.IsActive:
		return ErrProfileInactive
	case s.IsSystem:
		return nil
	}
	for _, p := range s.Allowed {
		if p.ScreenKey == screenKey && p.Action == action {
			return nil
		}
	}
	return ErrPermissionDenied
}

// UserPermissions is the payload served to the frontend menu.
type UserPermissions struct {
	IsAdmin     bool         `json:"is_admin"`
	ProfileID   *int64       `json:"profile_id"`
	Permissions []Permission `json:"permissions"`
}

func (s Subject) Permissions() UserPermissions {
	out := UserPermissions{ProfileID: s.ProfileID, Permissions: []Permission{}}
	if s.ProfileID == nil {
		return out
	}
	if s.ProfileFound && s.IsSystem {
		out.IsAdmin = true
		return out
	}
	if s.Allowed != nil {
		out.Permissions = s.Allowed
	}
	return out
}
