package model

import (
	"fmt"
	"strings"
)

// Status is the requirement status of a course within its programme
type Status string

const (
	StatusCore     Status = "Core"
	StatusElective Status = "Elective"
	StatusRequired Status = "Required"
)

// ParseStatus accepts both the single-letter dataset spelling (C, E, R)
// and the full names, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CORE":
		return StatusCore, nil
	case "E", "ELECTIVE":
		return StatusElective, nil
	case "R", "REQUIRED":
		return StatusRequired, nil
	}
	return "", fmt.Errorf("unknown course status %q", s)
}

// CourseRecord represents a single course offered in an academic year
type CourseRecord struct {
	Year    int    `db:"year" json:"year"`
	Code    string `db:"code" json:"code"`
	Title   string `db:"title" json:"title"`
	Credits int    `db:"credits" json:"credits"`
	Status  Status `db:"status" json:"status"`
}

// Label is the "{code} - {title}" string shown in course pickers.
func (c CourseRecord) Label() string {
	return c.Code + " - " + c.Title
}
