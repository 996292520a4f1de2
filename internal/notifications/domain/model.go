package domain

import (
	"errors"
	"sort"
	"time"
)

// ListLimit caps each of the personal and global lists.
const ListLimit = 100

var (
	ErrNotFound = errors.New("notification not found")
	ErrInvalid  = errors.New("invalid notification")
)

type Audience string

const (
	AudienceAll  Audience = "all"
	AudienceUser Audience = "user"
)

type Notification struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	TypeID     *int64    `json:"type_id"`
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	SourceID   *string   `json:"source_id"`
	Audience   Audience  `json:"audience"`
	AuthUserID *string   `json:"auth_user_id"`
	LinkURL    *string   `json:"link_url"`
}

// State is one user's view of a notification.
type State struct {
	NotificationID int64
	IsRead         bool
	ReadAt         *time.Time
	IsDeleted      bool
}

// Entry is a notification merged with the reader's state.
type Entry struct {
	Notification
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at"`
	IsDeleted bool       `json:"is_deleted"`
}

type Inbox struct {
	Notifications []Entry `json:"notifications"`
	UnreadCount   int     `json:"unreadCount"`
}

type Stats struct {
	Total   int `json:"total"`
	Unread  int `json:"unread"`
	Info    int `json:"info"`
	Success int `json:"success"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
}

// NewNotification is the payload for publishing a notification.
type NewNotification struct {
	Title      string   `json:"title" binding:"required"`
	Message    string   `json:"message" binding:"required"`
	TypeID     *int64   `json:"type_id"`
	Type       string   `json:"type" binding:"omitempty,oneof=info success warning error"`
	Category   string   `json:"category"`
	SourceID   *string  `json:"source_id"`
	Audience   Audience `json:"audience" binding:"required,oneof=all user"`
	AuthUserID *string  `json:"auth_user_id"`
	LinkURL    *string  `json:"link_url"`
	Push       bool     `json:"push"`
}

// Merge attaches states to notifications, drops the deleted ones and sorts
// newest first. A notification listed twice is kept once.
func Merge(items []Notification, states map[int64]State) Inbox {
	seen := make(map[int64]bool, len(items))
	out := make([]Entry, 0, len(items))
	unread := 0
	for _, n := range items {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		st := states[n.ID]
		if st.IsDeleted {
			continue
		}
		if !st.IsRead {
			unread++
		}
		out = append(out, Entry{Notification: n, IsRead: st.IsRead, ReadAt: st.ReadAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return Inbox{Notifications: out, UnreadCount: unread}
}

// Summarize counts the visible notifications per type.
func Summarize(items []Notification, states map[int64]State) Stats {
	var s Stats
	for _, e := range Merge(items, states).Notifications {
		s.Total++
		if !e.IsRead {
			s.Unread++
		}
		switch e.Type {
		case "info":
			s.Info++
		case "success":
			s.Success++
		case "warning":
			s.Warning++
		case "error":
			s.Error++
		}
	}
	return s
}
