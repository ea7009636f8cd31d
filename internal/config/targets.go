// Package config loads the collector's environment settings and the
// target-stocks document.
package config

import (
	"fmt"
	"os"
	"time"

	"stockcollector/internal/validator"

	"gopkg.in/yaml.v3"
)

// Targets is the target-stocks document: which instruments to collect and
// how far back to look. It is written as JSON; YAML is accepted too.
type Targets struct {
	Config TargetConfig `yaml:"config"`
	Stocks []Stock      `yaml:"stocks" validate:"required,min=1,unique=Ticker,dive"`
}

// TargetConfig holds the collection window settings.
type TargetConfig struct {
	DataCollectionMonths int    `yaml:"dataCollectionMonths" validate:"min=1,max=120"`
	Description          string `yaml:"description"`
}

// Stock is one instrument to collect.
type Stock struct {
	Ticker string `yaml:"ticker" validate:"required,ticker"`
	Name   string `yaml:"name" validate:"required"`
	Sector string `yaml:"sector"`
	// Market selects the listing venue; empty means KRX.
	Market string `yaml:"market" validate:"omitempty,market"`
}

// LoadTargets reads and validates the document at path.
func LoadTargets(path string) (*Targets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return ParseTargets(data)
}

// ParseTargets decodes and validates a target-stocks document.
func ParseTargets(data []byte) (*Targets, error) {
	var t Targets
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	if err := validator.New().Struct(&t); err != nil {
		return nil, fmt.Errorf("validate targets: %w", err)
	}
	return &t, nil
}

// Window returns the collection range ending at now and starting
// DataCollectionMonths calendar months earlier. When the earlier month is
// shorter, the start day is clamped to its last day (Mar 31 minus one
// month is Feb 28 or 29).
func (t *Targets) Window(now time.Time) (from, to time.Time) {
	return SubtractMonths(now, t.Config.DataCollectionMonths), now
}

// SubtractMonths moves t back by n calendar months, clamping the day.
func SubtractMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return first.AddDate(0, 0, d-1)
}
