package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("domain not found")
	ErrInvalid  = errors.New("invalid domain")
)

// Type names one taxonomy stored in the domains table.
type Type string

const (
	TypeEvaluationCategory    Type = "evaluation_category"
	TypeEvaluationSubcategory Type = "evaluation_subcategory"
	TypeEvaluationReplyType   Type = "evaluation_reply_type"
	TypeEvaluationStatus      Type = "evaluation_status"
	TypeProjectPhase          Type = "project_phase"
	TypePDIStatus             Type = "pdi_status"
	TypeRiskStatus            Type = "risk_status"
	TypeRiskPriority          Type = "risk_priority"
	TypeRiskType              Type = "risk_type"
)

type Domain struct {
	ID          int64     `json:"id"`
	Type        Type      `json:"type"`
	Value       string    `json:"value"`
	Tag         string    `json:"tag"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	ParentID    *int64    `json:"parent_id"`
	Parent      *Domain   `json:"parent,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Status filters List.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Option is a select option for the parent picker.
type Option struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// Input is the create/update payload.
type Input struct {
	Type        string  `json:"type"`
	Value       string  `json:"value"`
	Tag         string  `json:"tag"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
	ParentID    *int64  `json:"parent_id"`
}

// Normalize trims the fields, applies defaults and reports the first
// missing required field.
func (in Input) Normalize() (Domain, error) {
	d := Domain{
		Type:     Type(strings.TrimSpace(in.Type)),
		Value:    strings.TrimSpace(in.Value),
		Tag:      strings.TrimSpace(in.Tag),
		IsActive: true,
	}
	switch {
	case d.Type == "":
		return Domain{}, fieldError("type")
	case d.Value == "":
		return Domain{}, fieldError("value")
	case d.Tag == "":
		return Domain{}, fieldError("tag")
	}
	if in.Description != nil {
		if s := strings.TrimSpace(*in.Description); s != "" {
			d.Description = &s
		}
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if in.ParentID != nil && *in.ParentID > 0 {
		p := *in.ParentID
		d.ParentID = &p
	}
	return d, nil
}

// FieldError names the offending field of an invalid input.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return "domain " + e.Field + " is required" }
func (e *FieldError) Unwrap() error { return ErrInvalid }

func fieldError(field string) error { return &FieldError{Field: field} }
