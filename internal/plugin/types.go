// Package plugin runs external executables in response to slideshow
// navigation, so gestures can drive other presentation software.
package plugin

import "encoding/json"

// Events a plugin can subscribe to.
const (
	EventNext     = "next"
	EventPrevious = "previous"
	EventStart    = "start"
	EventEnd      = "end"
)

// Manifest describes a plugin's metadata and the events it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the manifest subscribes to event.
func (m Manifest) Handles(event string) bool {
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Request is written to a plugin's stdin.
type Request struct {
	Event  string          `json:"event"`
	Source string          `json:"source,omitempty"`
	Index  int             `json:"index"`
	Total  int             `json:"total"`
	Slide  string          `json:"slide,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
