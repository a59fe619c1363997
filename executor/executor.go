package executor

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hanpama/gqldirective/language"
	"github.com/hanpama/gqldirective/schema"
)

// Path is a response path: field response names and list indices.
type Path []PathElement

type PathElement = any

// Executor runs operations against a schema, resolving fields through a
// Runtime.
type Executor struct {
	runtime Runtime
	schema  *schema.Schema
	logger  *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger logs every located field error at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

func NewExecutor(runtime Runtime, s *schema.Schema, opts ...Option) *Executor {
	e := &Executor{runtime: runtime, schema: s, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute parses and validates query against the executor's schema, then runs
// it. Validation failures are reported as request errors without data.
func (e *Executor) Execute(ctx context.Context, query, operationName string, variables map[string]any, rootValue any) *ExecutionResult {
	ast, err := schema.ToAST(e.schema)
	if err != nil {
		return requestErrors(err)
	}
	doc, err := language.LoadQuery(ast, query)
	if err != nil {
		return requestErrors(err)
	}
	return e.ExecuteRequest(ctx, doc, operationName, variables, rootValue)
}

// ExecuteRequest runs an already parsed document.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	rootValue any,
) *ExecutionResult {
	op := operationNamed(document, operationName)
	if op == nil {
		return requestErrors(fmt.Errorf("operation not found"))
	}
	variables, err := coerceVariableValues(e.schema, op, variableValues)
	if err != nil {
		return requestErrors(err)
	}
	rootType, err := e.rootType(op.Operation)
	if err != nil {
		return requestErrors(err)
	}

	ex := &execution{
		ctx:       ctx,
		runtime:   e.runtime,
		schema:    e.schema,
		logger:    e.logger,
		document:  document,
		variables: variables,
		errors:    []GraphQLError{},
		nulled:    make(map[string]struct{}),
	}
	ex.data = ex.selectionSet(rootType, op.SelectionSet, rootValue, Path{}, Path{})
	if ex.data == nil {
		ex.pending = nil
	}
	for len(ex.pending) > 0 && ex.data != nil {
		ex.flush()
	}

	result := &ExecutionResult{Errors: ex.errors}
	if ex.data != nil {
		result.Data = ex.data
	}
	return result
}

func (e *Executor) rootType(op language.Operation) (*schema.Type, error) {
	var t *schema.Type
	switch op {
	case language.Query:
		t = e.schema.GetQueryType()
	case language.Mutation:
		t = e.schema.GetMutationType()
	case language.Subscription:
		t = e.schema.GetSubscriptionType()
	default:
		return nil, fmt.Errorf("unsupported operation type: %s", op)
	}
	if t == nil {
		return nil, fmt.Errorf("root type not found for %s operation", op)
	}
	return t, nil
}

// execution is the state of one ExecuteRequest call.
type execution struct {
	ctx       context.Context
	runtime   Runtime
	schema    *schema.Schema
	logger    *zap.Logger
	document  *language.QueryDocument
	variables map[string]any

	data    map[string]any
	errors  []GraphQLError
	pending []deferredField
	// nulled holds keys of response paths already set to null. Deferred
	// fields below them are never resolved.
	nulled map[string]struct{}
}

// deferredField is an async field waiting for the next batch.
type deferredField struct {
	task   ResolveTask
	typ    *schema.TypeRef
	fields []*language.Field
	// nullAt is where a null lands when the field fails: the field itself
	// when nullable, otherwise its nearest nullable ancestor.
	nullAt Path
}

// pendingValue holds the place of a deferred field in the response tree.
type pendingValue struct{}

// selectionSet executes set on source. nullAt is the null target of the
// object itself. A nil result means a non-null field came back null.
func (ex *execution) selectionSet(objectType *schema.Type, set language.SelectionSet, source any, path, nullAt Path) map[string]any {
	out := make(map[string]any)
	for _, group := range ex.collectFields(objectType, set) {
		fieldPath := appendPath(path, group.responseName)
		first := group.fields[0]
		if first.Name == "__typename" {
			out[group.responseName] = objectType.Name
			continue
		}
		def := objectType.Field(first.Name)
		if def == nil {
			ex.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", first.Name, objectType.Name), fieldPath)
			continue
		}

		fieldNullAt := fieldPath
		if schema.IsNonNull(def.Type) {
			fieldNullAt = nullAt
		}
		value := ex.field(objectType, def, group.fields, source, fieldPath, fieldNullAt)
		if isNullish(value) {
			if schema.IsNonNull(def.Type) {
				return nil
			}
			ex.markNull(fieldPath)
			value = nil
		}
		out[group.responseName] = value
	}
	return out
}

// field resolves a sync field in place or defers an async one.
func (ex *execution) field(objectType *schema.Type, def *schema.Field, fields []*language.Field, source any, path, nullAt Path) any {
	task := ResolveTask{
		ObjectType: objectType.Name,
		Field:      def.Name,
		Source:     source,
		Args:       ex.argumentValues(def, fields[0].Arguments, path),
		Path:       path,
	}
	if def.Async {
		ex.pending = append(ex.pending, deferredField{task: task, typ: def.Type, fields: fields, nullAt: nullAt})
		return pendingValue{}
	}
	value, err := ex.runtime.ResolveSync(ex.ctx, task)
	if err != nil {
		ex.addError(err.Error(), path)
		return nil
	}
	return ex.completeValue(def.Type, fields, value, path, nullAt)
}

// flush resolves every queued field in one batch and completes the results.
// Completing a batch may queue the next one.
func (ex *execution) flush() {
	batch := make([]deferredField, 0, len(ex.pending))
	for _, d := range ex.pending {
		if !ex.isNulled(d.task.Path) {
			batch = append(batch, d)
		}
	}
	ex.pending = nil
	if len(batch) == 0 {
		return
	}

	tasks := make([]ResolveTask, len(batch))
	for i, d := range batch {
		tasks[i] = d.task
	}
	results := ex.runtime.BatchResolveAsync(ex.ctx, tasks)
	for i, d := range batch {
		if i >= len(results) {
			// A short batch must not shift results onto the wrong paths.
			ex.completeDeferred(d, ResolveResult{Error: fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks))})
			continue
		}
		ex.completeDeferred(d, results[i])
	}
}

func (ex *execution) completeDeferred(d deferredField, res ResolveResult) {
	path := d.task.Path
	if ex.data == nil || ex.isNulled(path) {
		return
	}
	var value any
	if res.Error != nil {
		ex.addError(res.Error.Error(), path)
	} else {
		value = ex.completeValue(d.typ, d.fields, res.Value, path, d.nullAt)
	}
	if isNullish(value) {
		ex.setNull(d.nullAt)
		return
	}
	setValueAtPath(ex.data, path, value)
}

// completeValue shapes a resolved value by its schema type. nullAt is the
// null target of the value being completed.
func (ex *execution) completeValue(typ *schema.TypeRef, fields []*language.Field, value any, path, nullAt Path) any {
	if schema.IsNonNull(typ) {
		if isNullish(value) {
			if !ex.hasErrorAt(path) {
				ex.addError("Cannot return null for non-nullable field "+pathToString(path), path)
			}
			return nil
		}
		return ex.completeValue(schema.Unwrap(typ), fields, value, path, nullAt)
	}
	if isNullish(value) {
		return nil
	}
	if schema.IsList(typ) {
		return ex.completeList(typ, fields, value, path, nullAt)
	}

	name := schema.GetNamedType(typ)
	t := ex.schema.Types[name]
	if t == nil {
		ex.addError(fmt.Sprintf("Unknown type: %s", name), path)
		return nil
	}
	switch t.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := ex.runtime.SerializeLeafValue(ex.ctx, name, value)
		if err != nil {
			ex.addError(err.Error(), path)
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		return ex.selectionSet(t, mergeSelectionSets(fields), value, path, nullAt)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return ex.completeAbstract(t, fields, value, path, nullAt)
	}
	ex.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", t.Kind), path)
	return nil
}

func (ex *execution) completeList(typ *schema.TypeRef, fields []*language.Field, value any, path, nullAt Path) any {
	items, ok := listItems(value)
	if !ok {
		ex.addError(fmt.Sprintf("Expected list value, got %T", value), path)
		return nil
	}
	inner := schema.Unwrap(typ)
	itemsNonNull := schema.IsNonNull(inner)
	out := make([]any, len(items))
	for i, item := range items {
		itemPath := appendPath(path, i)
		itemNullAt := itemPath
		if itemsNonNull {
			itemNullAt = nullAt
		}
		v := ex.completeValue(inner, fields, item, itemPath, itemNullAt)
		if isNullish(v) {
			if itemsNonNull {
				return nil
			}
			ex.markNull(itemPath)
			v = nil
		}
		out[i] = v
	}
	return out
}

func (ex *execution) completeAbstract(abstract *schema.Type, fields []*language.Field, value any, path, nullAt Path) any {
	typeName, err := ex.runtime.ResolveType(ex.ctx, abstract.Name, value)
	if err != nil {
		ex.addError(err.Error(), path)
		return nil
	}
	objectType := ex.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		ex.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstract.Name, typeName), path)
		return nil
	}
	if !isPossibleType(abstract, objectType) {
		ex.addError(fmt.Sprintf("Runtime Object type %s is not a possible type for %s", typeName, abstract.Name), path)
		return nil
	}
	return ex.selectionSet(objectType, mergeSelectionSets(fields), value, path, nullAt)
}

func (ex *execution) addError(message string, path Path) {
	ex.logger.Debug("field error", zap.String("path", pathToString(path)), zap.String("error", message))
	ex.errors = append(ex.errors, GraphQLError{Message: message, Path: path})
}

func (ex *execution) hasErrorAt(path Path) bool {
	for _, err := range ex.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// setNull writes null at p and drops everything still queued below it. An
// empty path nulls the whole response.
func (ex *execution) setNull(p Path) {
	if len(p) == 0 {
		ex.data = nil
		return
	}
	ex.markNull(p)
	setValueAtPath(ex.data, p, nil)
}

func (ex *execution) markNull(p Path) {
	ex.nulled[pathKey(p)] = struct{}{}
}

// isNulled reports whether p or one of its ancestors was set to null.
func (ex *execution) isNulled(p Path) bool {
	if len(ex.nulled) == 0 {
		return false
	}
	var b strings.Builder
	for _, elem := range p {
		writePathKey(&b, elem)
		if _, ok := ex.nulled[b.String()]; ok {
			return true
		}
	}
	return false
}

func pathKey(p Path) string {
	var b strings.Builder
	for _, elem := range p {
		writePathKey(&b, elem)
	}
	return b.String()
}

func writePathKey(b *strings.Builder, elem PathElement) {
	if i, ok := elem.(int); ok {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(']')
		return
	}
	b.WriteByte('.')
	fmt.Fprint(b, elem)
}

// pathToString renders p for messages, e.g. "people[0].name".
func pathToString(p Path) string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		}
	}
	return b.String()
}

func appendPath(path Path, elem PathElement) Path {
	out := make(Path, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

// setValueAtPath writes value into the response tree. Missing or nulled
// parents leave the tree untouched.
func setValueAtPath(data map[string]any, p Path, value any) {
	var cur any = data
	for i, elem := range p {
		last := i == len(p)-1
		switch e := elem.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return
			}
			if last {
				m[e] = value
				return
			}
			cur = m[e]
		case int:
			s, ok := cur.([]any)
			if !ok || e < 0 || e >= len(s) {
				return
			}
			if last {
				s[e] = value
				return
			}
			cur = s[e]
		}
	}
}

// operationNamed picks the named operation, or the only one when name is
// empty.
func operationNamed(document *language.QueryDocument, name string) *language.OperationDefinition {
	return document.Operations.ForName(name)
}

func listItems(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish is true for nil and for typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
