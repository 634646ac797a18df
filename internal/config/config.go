// Package config loads presenter settings from a KEY=VALUE file with
// PRESENTER_<KEY> environment overrides.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/presenter/internal/gesture"
)

// EnvPrefix prefixes environment overrides, e.g. PRESENTER_ADDR.
const EnvPrefix = "PRESENTER_"

// Config holds all application configuration values.
type Config struct {
	// HTTP
	Addr   string
	WebDir string

	// Storage
	DataDir string

	// Capture. CameraID -1 disables the server-side pipeline.
	CameraID      int
	FrameInterval time.Duration

	// Plugins
	PluginDir string

	// MQTT relay, disabled when MQTTBroker is empty.
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	Discovery     bool
	Tray          bool
	GesturePreset string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:          ":8080",
		WebDir:        "web",
		DataDir:       "data",
		CameraID:      -1,
		FrameInterval: 50 * time.Millisecond,
		PluginDir:     "plugins",
		MQTTClientID:  "gesture-presenter",
		MQTTTopic:     "presenter",
		GesturePreset: "presentation",
	}
}

// Keys lists every recognized key.
var Keys = []string{
	"ADDR", "WEB_DIR", "DATA_DIR", "CAMERA_ID", "FRAME_INTERVAL_MS", "PLUGIN_DIR",
	"MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_TOPIC", "DISCOVERY", "TRAY", "GESTURE_PRESET",
}

// Load returns Default overlaid with the file at configPath, if any, and
// then with environment overrides. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFile(configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(configPath string) error {
	file, err := os.Open(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := c.setValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, key := range Keys {
		value, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		if err := c.setValue(key, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("env %s%s: %w", EnvPrefix, key, err)
		}
	}
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "ADDR":
		c.Addr = value
	case "WEB_DIR":
		c.WebDir = value
	case "DATA_DIR":
		c.DataDir = value
	case "CAMERA_ID":
		id, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CAMERA_ID %q: %w", value, err)
		}
		c.CameraID = id
	case "FRAME_INTERVAL_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid FRAME_INTERVAL_MS %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("FRAME_INTERVAL_MS must be positive, got %d", ms)
		}
		c.FrameInterval = time.Duration(ms) * time.Millisecond
	case "PLUGIN_DIR":
		c.PluginDir = value
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC":
		c.MQTTTopic = value
	case "DISCOVERY":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISCOVERY %q: %w", value, err)
		}
		c.Discovery = b
	case "TRAY":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid TRAY %q: %w", value, err)
		}
		c.Tray = b
	case "GESTURE_PRESET":
		c.GesturePreset = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.CameraID < -1 {
		return fmt.Errorf("CAMERA_ID must be -1 or a device index, got %d", c.CameraID)
	}
	if _, err := gesture.Preset(c.GesturePreset); err != nil {
		return err
	}
	return nil
}

// CaptureEnabled reports whether a camera is configured.
func (c *Config) CaptureEnabled() bool {
	return c.CameraID >= 0
}

// Port returns the numeric port of Addr, or 0 when it has none.
func (c *Config) Port() int {
	i := strings.LastIndex(c.Addr, ":")
	if i < 0 {
		return 0
	}
	port, err := strconv.Atoi(c.Addr[i+1:])
	if err != nil {
		return 0
	}
	return port
}
