package entity

// Entity is a filterable record: an issue, time entry, or similar. Built-in
// attributes live in Values keyed by field name; custom field values are kept
// raw (string form) keyed by custom field id, one slice entry per stored value.
//
// Value types in Values: int64 for identifiers and integer fields, float64,
// string, bool, time.Time for date and datetime fields. A missing key or a nil
// value means the field is unset.
type Entity struct {
	ID           int64              `json:"id"`
	Kind         string             `json:"kind,omitempty"`
	Values       map[string]any     `json:"values"`
	CustomValues map[int64][]string `json:"custom_values,omitempty"`
	WatcherIDs   []int64            `json:"watcher_ids,omitempty"`
}

// Value returns a built-in attribute, or (nil, false) when unset.
func (e *Entity) Value(name string) (any, bool) {
	if e.Values == nil {
		return nil, false
	}
	v, ok := e.Values[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Int64 returns a built-in attribute coerced to int64.
func (e *Entity) Int64(name string) (int64, bool) {
	v, ok := e.Value(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// Float64 returns a built-in attribute coerced to float64.
func (e *Entity) Float64(name string) (float64, bool) {
	v, ok := e.Value(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// String returns a built-in attribute coerced to string.
func (e *Entity) String(name string) (string, bool) {
	v, ok := e.Value(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ProjectID returns the owning project id, or 0 when the entity has none.
func (e *Entity) ProjectID() int64 {
	id, _ := e.Int64("project_id")
	return id
}

// Custom returns the stored values for a custom field.
func (e *Entity) Custom(customFieldID int64) []string {
	if e.CustomValues == nil {
		return nil
	}
	return e.CustomValues[customFieldID]
}

// WatchedBy reports whether the user watches the entity.
func (e *Entity) WatchedBy(userID int64) bool {
	for _, id := range e.WatcherIDs {
		if id == userID {
			return true
		}
	}
	return false
}
