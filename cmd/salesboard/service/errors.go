package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrNoFile             = errors.New("no file uploaded")
	ErrNotCSV             = errors.New("only CSV files are allowed")
	ErrInvalidCSV         = errors.New("error parsing CSV")
	ErrInvalidParam       = errors.New("invalid query parameter")
	ErrInvalidPage        = errors.New("invalid page")
)

// ValidationError maps request fields to the messages explaining why they were rejected.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
