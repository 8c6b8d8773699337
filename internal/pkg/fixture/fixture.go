// Package fixture loads the scripted step data that drives the client.
package fixture

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"ssvp/internal/pkg/validate"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Step is one scripted record the client sends.
type Step struct {
	StepID      uint64
	WaitSeconds float64
	Interval    time.Duration
	Payload     json.RawMessage
}

// Think returns the pause before the step is sent: the scripted interval
// when the fixture provides one, otherwise the step's own wait.
func (s Step) Think() time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return time.Duration(s.WaitSeconds * float64(time.Second))
}

// document mirrors the fixture file layout. Pointer fields distinguish a
// missing value from a legitimate zero.
type document struct {
	TestServices []entry `json:"test_services" validate:"required,min=1,dive"`
}

type entry struct {
	StepID          *uint64         `json:"step_id" validate:"required"`
	WaitSeconds     *float64        `json:"wait_seconds" validate:"required"`
	IntervalSeconds *float64        `json:"interval_seconds"`
	Payload         json.RawMessage `json:"payload"`
}

// Load reads and validates a fixture file.
func Load(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture %s failed", path)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(ErrInvalidFixture, "parse %s: %v", path, err)
	}
	if err := validate.Validate().Struct(&doc); err != nil {
		return nil, errors.Wrapf(ErrInvalidFixture, "validate %s: %v", path, err)
	}
	steps := make([]Step, 0, len(doc.TestServices))
	for _, e := range doc.TestServices {
		step := Step{
			StepID:      *e.StepID,
			WaitSeconds: *e.WaitSeconds,
			Payload:     e.Payload,
		}
		if e.IntervalSeconds != nil {
			step.Interval = time.Duration(*e.IntervalSeconds * float64(time.Second))
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// Catalog maps data set names to fixture paths.
type Catalog struct {
	DataSets map[string]string `toml:"datasets"`
}

// Resolve maps a data set name to a fixture path. The name is looked up in
// the TOML catalog when one exists; relative catalog entries are taken
// relative to the catalog file. Without a catalog entry the conventional
// test_data/<name>_data.json path is used.
func Resolve(catalogPath, name string) (string, error) {
	fallback := filepath.Join("test_data", name+"_data.json")
	if catalogPath == "" {
		return fallback, nil
	}
	var catalog Catalog
	if _, err := toml.DecodeFile(catalogPath, &catalog); err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return "", errors.Wrapf(err, "load catalog %s failed", catalogPath)
	}
	path, ok := catalog.DataSets[name]
	if !ok {
		return fallback, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(catalogPath), path)
	}
	return path, nil
}
