// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string `validate:"required"`
	MQTTClientIDNavigator string
	MQTTClientIDGPS       string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string
	MQTTClientIDSimulator string

	// Topics
	TopicIMU        string `validate:"required"`
	TopicGPS        string `validate:"required"`
	TopicHeading    string `validate:"required"`
	TopicNavState   string `validate:"required"`
	TopicNavCommand string `validate:"required"`

	// GPS
	GPSSerialPort string
	GPSBaudRate   int `validate:"omitempty,oneof=4800 9600 19200 38400 57600 115200"`

	// Web Server
	WebServerPort int `validate:"omitempty,min=1,max=65535"`

	// Simulator
	SimInterval int     `validate:"omitempty,min=10,max=49"` // milliseconds, below the gyro gap
	SimSpeedMps float64 `validate:"omitempty,gt=0,lte=10"`
	RoutePlan   string
}

// Defaults used when a key is left out of the file.
const (
	DefaultWebServerPort = 8080
	DefaultSimInterval   = 20
	DefaultSimSpeedMps   = 1.4
)

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex

	validate = validator.New()
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines from r. Empty lines and lines starting with #
// are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		if err := cfg.setValue(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_NAVIGATOR":
		c.MQTTClientIDNavigator = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_SIMULATOR":
		c.MQTTClientIDSimulator = value

	// Topics
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_HEADING":
		c.TopicHeading = value
	case "TOPIC_NAV_STATE":
		c.TopicNavState = value
	case "TOPIC_NAV_COMMAND":
		c.TopicNavCommand = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Simulator
	case "SIM_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SIM_INTERVAL %q: %w", value, err)
		}
		c.SimInterval = interval
	case "SIM_SPEED_MPS":
		speed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SIM_SPEED_MPS %q: %w", value, err)
		}
		c.SimSpeedMps = speed
	case "ROUTE_PLAN":
		c.RoutePlan = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.WebServerPort == 0 {
		c.WebServerPort = DefaultWebServerPort
	}
	if c.SimInterval == 0 {
		c.SimInterval = DefaultSimInterval
	}
	if c.SimSpeedMps == 0 {
		c.SimSpeedMps = DefaultSimSpeedMps
	}
}

// validate checks the struct tags and reports the first failing key by its
// file name.
func (c *Config) validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s: failed %q check (value %v)", keyNames[fe.Field()], fe.Tag(), fe.Value())
	}
	return fmt.Errorf("validate config: %w", err)
}

var keyNames = map[string]string{
	"MQTTBroker":      "MQTT_BROKER",
	"TopicIMU":        "TOPIC_IMU",
	"TopicGPS":        "TOPIC_GPS",
	"TopicHeading":    "TOPIC_HEADING",
	"TopicNavState":   "TOPIC_NAV_STATE",
	"TopicNavCommand": "TOPIC_NAV_COMMAND",
	"GPSBaudRate":     "GPS_BAUD_RATE",
	"WebServerPort":   "WEB_SERVER_PORT",
	"SimInterval":     "SIM_INTERVAL",
	"SimSpeedMps":     "SIM_SPEED_MPS",
}

// SimTick returns SIM_INTERVAL as a duration.
func (c *Config) SimTick() time.Duration {
	return time.Duration(c.SimInterval) * time.Millisecond
}

// RequireGPS reports whether the serial settings needed by the GPS producer
// are present.
func (c *Config) RequireGPS() error {
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if c.GPSBaudRate == 0 {
		return fmt.Errorf("GPS_BAUD_RATE is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
