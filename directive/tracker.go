package directive

import (
	"maps"
	"sync"

	"github.com/hanpama/gqldirective/schema"
)

// Level is where a directive occurrence was written.
type Level int

const (
	// LevelObject is an occurrence on an object type, applied to all of its fields.
	LevelObject Level = iota + 1
	// LevelField is an occurrence on a single field definition.
	LevelField
)

func (l Level) String() string {
	switch l {
	case LevelObject:
		return "object"
	case LevelField:
		return "field"
	default:
		return "unknown"
	}
}

// Tracker records which directives have been applied to which fields. Fields
// are keyed by pointer identity; the schema itself is never annotated.
//
// An object-level application is skipped for a field that already has the
// directive, so a field-level occurrence written on the field keeps
// precedence. A field-level application always goes through.
type Tracker struct {
	mu      sync.Mutex
	applied map[*schema.Field]map[string]Level
}

// NewTracker returns an empty Tracker. The zero value is also ready to use.
func NewTracker() *Tracker {
	return &Tracker{applied: make(map[*schema.Field]map[string]Level)}
}

// ShouldApply reports whether the named directive may be applied to field.
func (t *Tracker) ShouldApply(field *schema.Field, name string, fromObjectLevel bool) bool {
	if !fromObjectLevel {
		return true
	}
	return !t.IsApplied(field, name)
}

// MarkApplied records name as applied to field at level. Marking again only
// updates the level.
func (t *Tracker) MarkApplied(field *schema.Field, name string, level Level) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.applied == nil {
		t.applied = make(map[*schema.Field]map[string]Level)
	}
	rec := t.applied[field]
	if rec == nil {
		rec = make(map[string]Level)
		t.applied[field] = rec
	}
	rec[name] = level
}

// IsApplied reports whether name has been applied to field.
func (t *Tracker) IsApplied(field *schema.Field, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.applied[field][name]
	return ok
}

// Applied returns a copy of the directives applied to field and the level of
// their latest application.
func (t *Tracker) Applied(field *schema.Field) map[string]Level {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.applied[field])
}
