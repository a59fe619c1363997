package executor

import (
	"context"
	"fmt"
	"sync"
)

// stubField produces the value of one field from its parent.
type stubField func(source any) (any, error)

func value(v any) stubField {
	return func(any) (any, error) { return v, nil }
}

func failure(err error) stubField {
	return func(any) (any, error) { return nil, err }
}

// call records one field resolution. Batch numbers async calls by the batch
// they arrived in; sync calls have Batch 0.
type call struct {
	Batch      int
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
	Path       Path
}

// stubRuntime serves fields from a table keyed "Type.field", passes leaf
// values through and resolves abstract types from a "__typename" key.
type stubRuntime struct {
	fields map[string]stubField

	mu      sync.Mutex
	calls   []call
	batches int
}

func newStubRuntime(fields map[string]stubField) *stubRuntime {
	return &stubRuntime{fields: fields}
}

func (r *stubRuntime) ResolveSync(_ context.Context, task ResolveTask) (any, error) {
	return r.resolve(task, 0)
}

func (r *stubRuntime) BatchResolveAsync(_ context.Context, tasks []ResolveTask) []ResolveResult {
	r.mu.Lock()
	r.batches++
	batch := r.batches
	r.mu.Unlock()

	results := make([]ResolveResult, len(tasks))
	for i, task := range tasks {
		results[i].Value, results[i].Error = r.resolve(task, batch)
	}
	return results
}

func (r *stubRuntime) resolve(task ResolveTask, batch int) (any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{
		Batch:      batch,
		ObjectType: task.ObjectType,
		Field:      task.Field,
		Source:     task.Source,
		Args:       task.Args,
		Path:       task.Path,
	})
	r.mu.Unlock()

	f := r.fields[task.ObjectType+"."+task.Field]
	if f == nil {
		return nil, nil
	}
	return f(task.Source)
}

func (r *stubRuntime) ResolveType(_ context.Context, abstractType string, v any) (string, error) {
	if m, ok := v.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve %s for %T", abstractType, v)
}

func (r *stubRuntime) SerializeLeafValue(_ context.Context, _ string, v any) (any, error) {
	return v, nil
}

func (r *stubRuntime) recorded() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}
