package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// DateLayout is the calendar date format used by the report parameters.
const DateLayout = "2006-01-02"

var ErrInvalid = errors.New("invalid report query")

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusAll      Status = "all"
)

// ParseStatus defaults to active when v is empty.
func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case "":
		return StatusActive, nil
	case StatusActive, StatusInactive, StatusAll:
		return Status(v), nil
	}
	return "", errors.New("status must be one of active, inactive, all")
}

type Consultant struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type ReportQuery struct {
	Start   time.Time
	End     time.Time
	UserIDs []string
	Status  Status
}

// ReportRow is one consultant's balance for the period.
type ReportRow struct {
	UserID                      string        `json:"user_id"`
	UserName                    string        `json:"user_name"`
	ExpectedHours               float64       `json:"expected_hours"`
	WorkedHours                 float64       `json:"worked_hours"`
	ExpectedHoursUntilYesterday float64       `json:"expected_hours_until_yesterday"`
	OvertimeHoursInPeriod       float64       `json:"overtime_hours_in_period"`
	PositiveCompHoursInPeriod   float64       `json:"positive_comp_hours_in_period"`
	NegativeCompHoursInPeriod   float64       `json:"negative_comp_hours_in_period"`
	TotalPositiveCompHours      float64       `json:"total_positive_comp_hours"`
	TotalNegativeCompHours      float64       `json:"total_negative_comp_hours"`
	TimeBalance                 float64       `json:"time_balance"`
	DailyDetails                []DailyDetail `json:"daily_details"`
}

type DailyDetail struct {
	Date             string  `json:"date"`
	DayOfWeek        any     `json:"dayOfWeek"`
	ExpectedHours    float64 `json:"expected_hours"`
	WorkedHours      float64 `json:"worked_hours"`
	CompPositive     float64 `json:"comp_positive"`
	CompNegative     float64 `json:"comp_negative"`
	IsInsufficient   bool    `json:"isInsufficient"`
	IsMoresufficient bool    `json:"isMoresufficient"`
}

// rawDay mirrors an element of out_daily_details as the report function
// builds it.
type rawDay struct {
	Date             string `json:"date"`
	DayOfWeek        any    `json:"day_of_week"`
	ExpectedHours    Number `json:"expected_hours"`
	WorkedHours      Number `json:"worked_hours"`
	CompPositive     Number `json:"comp_positive"`
	CompNegative     Number `json:"comp_negative"`
	IsInsufficient   *bool  `json:"is_insufficient"`
	IsMoresufficient *bool  `json:"is_moresufficient"`
}

// ParseDailyDetails decodes the JSON array returned by the report. An empty
// or null payload yields an empty slice.
func ParseDailyDetails(raw []byte) ([]DailyDetail, error) {
	out := []DailyDetail{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	var days []rawDay
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, err
	}
	for _, d := range days {
		out = append(out, DailyDetail{
			Date:             d.Date,
			DayOfWeek:        d.DayOfWeek,
			ExpectedHours:    float64(d.ExpectedHours),
			WorkedHours:      float64(d.WorkedHours),
			CompPositive:     float64(d.CompPositive),
			CompNegative:     float64(d.CompNegative),
			IsInsufficient:   d.IsInsufficient != nil && *d.IsInsufficient,
			IsMoresufficient: d.IsMoresufficient != nil && *d.IsMoresufficient,
		})
	}
	return out, nil
}

// Number accepts a JSON number, a numeric string or null. Anything that does
// not parse decodes to zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}
