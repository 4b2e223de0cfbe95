package models

import (
	"fmt"
	"time"

	"asset-report/internal/utils"
)

// ReportKind is the period a report covers
type ReportKind string

const (
	ReportKindWeekly  ReportKind = "weekly"
	ReportKindMonthly ReportKind = "monthly"
	ReportKindYearly  ReportKind = "yearly"
	ReportKindCustom  ReportKind = "custom"
)

// ParseReportKind validates a kind string
func ParseReportKind(s string) (ReportKind, error) {
	switch k := ReportKind(s); k {
	case ReportKindWeekly, ReportKindMonthly, ReportKindYearly, ReportKindCustom:
		return k, nil
	default:
		return "", fmt.Errorf("unknown report kind %q", s)
	}
}

// Window is an inclusive range of calendar days
type Window struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

// NewWindow builds a window from two YYYY-MM-DD strings
func NewWindow(start, end string) (Window, error) {
	s, err := utils.ParseDate(start)
	if err != nil {
		return Window{}, fmt.Errorf("invalid start date: %w", err)
	}
	e, err := utils.ParseDate(end)
	if err != nil {
		return Window{}, fmt.Errorf("invalid end date: %w", err)
	}
	if e.Before(s) {
		return Window{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return Window{Start: s, End: e}, nil
}

// Days is the number of calendar days covered, both ends included
func (w Window) Days() int {
	return utils.DaysInclusive(w.Start, w.End)
}

// Prior returns the equal-length window that ends the day before w starts
func (w Window) Prior() Window {
	length := w.Days()
	return Window{
		Start: utils.StartOfDay(w.Start).AddDate(0, 0, -length),
		End:   utils.StartOfDay(w.Start).AddDate(0, 0, -1),
	}
}

// Contains reports whether t falls on a day inside the window
func (w Window) Contains(t time.Time) bool {
	d := utils.StartOfDay(t)
	return !d.Before(utils.StartOfDay(w.Start)) && !d.After(utils.StartOfDay(w.End))
}

// String renders the window as "YYYY-MM-DD..YYYY-MM-DD"
func (w Window) String() string {
	return utils.FormatDate(w.Start) + ".." + utils.FormatDate(w.End)
}

// TaskContext is the immutable input of one report workflow run
type TaskContext struct {
	ReportID   string     `json:"reportId"`
	UserID     string     `json:"userId"`
	Kind       ReportKind `json:"kind"`
	Window     Window     `json:"window"`
	FocusAreas []string   `json:"focusAreas,omitempty"`
	Credential string     `json:"-"` // Provider API key; empty disables LLM calls
	Model      string     `json:"model,omitempty"`
}

// HasCredential reports whether provider calls may be attempted
func (t TaskContext) HasCredential() bool {
	return t.Credential != ""
}
