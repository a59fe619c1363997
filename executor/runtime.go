package executor

import "context"

// Runtime is how the Executor reaches field values.
//
// The Executor walks the operation one depth at a time. Synchronous fields go
// through ResolveSync as they are met; the asynchronous fields met at a depth
// are handed to BatchResolveAsync together, once, and only when there is at
// least one of them. ResolveSync never sees an async field.
//
// Any error a method returns becomes a located GraphQL error. When the field
// is Non-Null its null moves up to the nearest nullable ancestor, and queued
// fields under that ancestor are dropped without being resolved.
//
// Implementations must be safe for concurrent use across operations and must
// not mutate sources or arguments.
type Runtime interface {
	// ResolveSync returns a field value right away. (nil, nil) is a GraphQL
	// null.
	ResolveSync(ctx context.Context, task ResolveTask) (any, error)

	// BatchResolveAsync resolves one depth worth of async fields. It returns
	// exactly one result per task, in task order; one failure does not affect
	// the others.
	BatchResolveAsync(ctx context.Context, tasks []ResolveTask) []ResolveResult

	// ResolveType names the object type of a value whose static type is an
	// interface or union.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue turns a scalar or enum value into a JSON-safe value.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// ResolveTask identifies a single field resolution.
type ResolveTask struct {
	// ObjectType and Field name the field, e.g. "Person" and "name".
	ObjectType string
	Field      string
	// Source is the parent value; the root value for root fields.
	Source any
	// Args holds the coerced arguments, defaults included.
	Args map[string]any
	// Path is the response path of the field.
	Path Path
}

// ResolveResult is the outcome of one task in a batch.
type ResolveResult struct {
	Value any
	Error error
}
