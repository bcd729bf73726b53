// Package infra serves unauthenticated liveness and status endpoints.
package infra

import "time"

// Handlers holds the dependencies for infrastructure HTTP handlers.
type Handlers struct {
	StartTime time.Time
	EngineID  string
}

// New creates a new instance of infrastructure handlers.
func New(startTime time.Time, engineID string) *Handlers {
	return &Handlers{
		StartTime: startTime,
		EngineID:  engineID,
	}
}
