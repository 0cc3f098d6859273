// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON, creating the directory.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create registry directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Validate checks required fields, uniqueness of IDs and task types,
// statuses and timeouts. All problems are reported together.
func (r *ActivityRegistry) Validate() error {
	var errs []error
	ids := make(map[string]bool, len(r.Activities))
	taskTypes := make(map[string]bool, len(r.Activities))

	for i, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" || a.DisplayName == "" {
			errs = append(errs, fmt.Errorf("activity %d: id, taskType and displayName are required", i))
			continue
		}
		if ids[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate activity id %q", a.ID))
		}
		ids[a.ID] = true
		if taskTypes[a.TaskType] {
			errs = append(errs, fmt.Errorf("duplicate task type %q", a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if !validStatuses[a.ImplementationStatus] {
			errs = append(errs, fmt.Errorf("activity %q: invalid implementationStatus %q", a.ID, a.ImplementationStatus))
		}
		if d, err := time.ParseDuration(a.Timeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("activity %q: invalid timeout %q", a.ID, a.Timeout))
		}
		if a.Retries < 0 {
			errs = append(errs, fmt.Errorf("activity %q: retries must not be negative", a.ID))
		}
	}
	return errors.Join(errs...)
}

// SchemaMap converts a typed schema into the generic form stored in the
// registry.
func SchemaMap(schema interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
