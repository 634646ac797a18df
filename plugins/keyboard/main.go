// Package main provides a keyboard plugin for macOS.
// It turns slideshow navigation into arrow key presses via AppleScript so
// the foreground presentation app follows the presenter's gestures.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event  string          `json:"event"`
	Source string          `json:"source"`
	Index  int             `json:"index"`
	Total  int             `json:"total"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Key is a key press bound to an event.
type Key struct {
	Code      int      `json:"code"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// Config overrides the default key bindings per event.
type Config struct {
	Keys map[string]Key `json:"keys"`
	// App, when set, is activated before the key is sent.
	App string `json:"app"`
}

// defaultKeys are macOS virtual key codes.
var defaultKeys = map[string]Key{
	"next":     {Code: 124}, // right arrow
	"previous": {Code: 123}, // left arrow
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	key, ok := cfg.Keys[req.Event]
	if !ok {
		key, ok = defaultKeys[req.Event]
	}
	if !ok {
		writeErrorResponse(fmt.Sprintf("no key bound to event: %s", req.Event))
		return
	}

	if err := runAppleScript(buildKeyCodeScript(cfg.App, key)); err != nil {
		writeErrorResponse(fmt.Sprintf("event %s failed: %v", req.Event, err))
		return
	}

	writeSuccessResponse()
}

// buildKeyCodeScript generates an AppleScript that presses key, optionally
// bringing app to the front first.
func buildKeyCodeScript(app string, key Key) string {
	var b strings.Builder
	if app != "" {
		fmt.Fprintf(&b, "tell application %q to activate\n", app)
	}

	var appleModifiers []string
	for _, mod := range key.Modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		fmt.Fprintf(&b, `tell application "System Events" to key code %d`, key.Code)
	} else {
		fmt.Fprintf(&b, `tell application "System Events" to key code %d using {%s}`, key.Code, strings.Join(appleModifiers, ", "))
	}
	return b.String()
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript and returns any error.
func runAppleScript(script string) error {
	args := []string{}
	for _, line := range strings.Split(script, "\n") {
		args = append(args, "-e", line)
	}
	cmd := exec.Command("osascript", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
