package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ModuleFlags stores the per-subscription module toggle map as JSON.
type ModuleFlags map[string]bool

func (f *ModuleFlags) Scan(src any) error {
	if src == nil {
		*f = ModuleFlags{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return f.parseFromBytes([]byte(v))
	case []byte:
		return f.parseFromBytes(v)
	default:
		return fmt.Errorf("ModuleFlags: unsupported Scan type %T", src)
	}
}

func (f ModuleFlags) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]bool(f))
	if err != nil {
		return nil, fmt.Errorf("ModuleFlags: marshal: %w", err)
	}
	return string(raw), nil
}

// Enabled reports whether the slug is present and switched on. Absent keys
// default to false.
func (f ModuleFlags) Enabled(slug string) bool {
	return f[slug]
}

func (f *ModuleFlags) parseFromBytes(raw []byte) error {
	if len(raw) == 0 {
		*f = ModuleFlags{}
		return nil
	}
	out := map[string]bool{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("ModuleFlags: parse: %w", err)
	}
	*f = ModuleFlags(out)
	return nil
}
