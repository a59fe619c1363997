// Package executor runs GraphQL operations against a schema.Schema.
//
// Execution is breadth first. Fields are either synchronous or asynchronous
// according to schema.Field.Async:
//
//   - Synchronous fields are resolved as soon as they are reached and their
//     object values keep expanding in place, without adding depth.
//   - Asynchronous fields are queued. When a depth has been expanded, every
//     queued field goes to Runtime.BatchResolveAsync in a single call and the
//     results are completed, which may queue the next depth.
//
// So an operation whose deepest chain of async fields has length d makes
// exactly d batch calls, however many fields each depth holds.
//
// Values are completed by their schema type. Lists complete item by item,
// leaves go through Runtime.SerializeLeafValue and interface or union values
// are narrowed with Runtime.ResolveType before their selection set runs.
//
// Errors are collected with their response path and execution carries on.
// A null in a Non-Null position replaces the nearest nullable ancestor with
// null; when there is none, the whole data becomes null. Queued fields under
// a nulled path are never handed to the runtime.
//
// NewResolverRuntime serves a schema whose fields carry schema.Resolver
// functions: sync fields call their resolver inline, the async fields of a
// depth fan out on an errgroup. Resolvers wrapped by schema directives run
// through the same path as hand-written ones. Fields bound with
// schema.Schema.BindResolvers are async; fields projected by
// schema.DefaultResolver stay sync.
//
// Executor.Execute validates the query with gqlparser first and reports
// validation failures, with their locations, as errors without data.
package executor
