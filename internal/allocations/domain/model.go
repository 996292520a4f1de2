package domain

import (
	"errors"
	"time"
)

var ErrInvalidStatus = errors.New("status must be Aberto, Fechado or Todos")

// Task is the tasks row joined onto an assignment.
type Task struct {
	ID                int64      `json:"id"`
	TaskID            *int64     `json:"task_id"`
	Title             string     `json:"title"`
	TypeName          string     `json:"type_name"`
	GanttBarStartDate *time.Time `json:"gantt_bar_start_date"`
	GanttBarEndDate   *time.Time `json:"gantt_bar_end_date"`
	ProjectName       string     `json:"project_name"`
	ClientName        string     `json:"client_name"`
	BillingType       string     `json:"billing_type"`
}

// IsHoliday reports task types that are time off rather than work.
func (t *Task) IsHoliday() bool {
	return t.TypeName == "Férias" || t.TypeName == "Happy day"
}

type Assignment struct {
	ID                     int64      `json:"id"`
	AssigneeID             string     `json:"assignee_id"`
	IsClosed               bool       `json:"is_closed"`
	CreatedAt              *time.Time `json:"created_at"`
	CloseDate              *time.Time `json:"close_date"`
	CurrentEstimateSeconds *int64     `json:"current_estimate_seconds"`
	TimeWorked             *int64     `json:"time_worked"`
	Task                   *Task      `json:"tasks"`
}

type StatusFilter string

const (
	StatusOpen   StatusFilter = "Aberto"
	StatusClosed StatusFilter = "Fechado"
	StatusAll    StatusFilter = "Todos"
)

func ParseStatus(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "":
		return StatusAll, nil
	case StatusOpen, StatusClosed, StatusAll:
		return StatusFilter(s), nil
	}
	return "", ErrInvalidStatus
}

// Matches reports whether an assignment with the given closed flag passes.
func (f StatusFilter) Matches(closed bool) bool {
	switch f {
	case StatusOpen:
		return !closed
	case StatusClosed:
		return closed
	}
	return true
}

// Closed converts the filter into the RPC's tri-state _status argument.
func (f StatusFilter) Closed() *bool {
	switch f {
	case StatusOpen:
		v := false
		return &v
	case StatusClosed:
		v := true
		return &v
	}
	return nil
}

// TaskDetail is the tooltip payload of one assignment.
type TaskDetail struct {
	RunrunTaskID  *int64 `json:"runrunTaskId"`
	Tarefa        string `json:"tarefa"`
	Inicio        string `json:"inicio"`
	Entrega       string `json:"entrega"`
	HrPrevSeconds *int64 `json:"hrPrevSeconds"`
	HrExecSeconds *int64 `json:"hrExecSeconds"`

	start time.Time
	end   time.Time
}

func NewTaskDetail(start, end time.Time, inicio, entrega string) TaskDetail {
	return TaskDetail{Inicio: inicio, Entrega: entrega, start: start, end: end}
}

func (d TaskDetail) Start() time.Time { return d.start }
func (d TaskDetail) End() time.Time   { return d.end }

// EventProps carries the metadata rendered in event tooltips.
type EventProps struct {
	*TaskDetail
	Projeto     string       `json:"projeto"`
	Cliente     string       `json:"cliente"`
	Status      string       `json:"status,omitempty"`
	BillingType string       `json:"billing_type,omitempty"`
	IsGroup     bool         `json:"isGroup"`
	Tasks       []TaskDetail `json:"tasks,omitempty"`
}

// Event is one bar on the resource timeline.
type Event struct {
	ID              string     `json:"id"`
	ResourceID      string     `json:"resourceId"`
	Title           string     `json:"title"`
	Start           string     `json:"start"`
	End             string     `json:"end"`
	BackgroundColor string     `json:"backgroundColor"`
	BorderColor     string     `json:"borderColor"`
	ClassNames      []string   `json:"classNames"`
	ExtendedProps   EventProps `json:"extendedProps"`
}

// Options controls event building.
type Options struct {
	Grouped bool
	Status  StatusFilter
	// MaxGapBusinessDays is the number of weekdays allowed strictly between
	// a segment's end and the next task's start for the two to merge.
	MaxGapBusinessDays int
}

const DefaultMaxGapBusinessDays = 1

// Project is one option returned by get_distinct_projects.
type Project struct {
	Name string `json:"project_name"`
}

// Filter selects assignments through get_filtered_assignments.
type Filter struct {
	ConsultantIDs []string
	ProjectNames  []string
	Status        StatusFilter
	StartDate     time.Time
}
