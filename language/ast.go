package language

import "github.com/vektah/gqlparser/v2/ast"

// Documents and sources.
type (
	Source        = ast.Source
	Position      = ast.Position
	SchemaAST     = ast.Schema
	QueryDocument = ast.QueryDocument
)

// Executable definitions.
type (
	Operation           = ast.Operation
	OperationDefinition = ast.OperationDefinition
	SelectionSet        = ast.SelectionSet
	Field               = ast.Field
	InlineFragment      = ast.InlineFragment
	FragmentSpread      = ast.FragmentSpread
	ArgumentList        = ast.ArgumentList
	Value               = ast.Value
	ValueKind           = ast.ValueKind
	Type                = ast.Type
)

// Type system definitions and directive uses.
type (
	Definition          = ast.Definition
	DefinitionKind      = ast.DefinitionKind
	FieldDefinition     = ast.FieldDefinition
	DirectiveDefinition = ast.DirectiveDefinition
	Directive           = ast.Directive
	DirectiveList       = ast.DirectiveList
)

const (
	Query        = ast.Query
	Mutation     = ast.Mutation
	Subscription = ast.Subscription
)

const (
	Object      = ast.Object
	Interface   = ast.Interface
	Union       = ast.Union
	Scalar      = ast.Scalar
	Enum        = ast.Enum
	InputObject = ast.InputObject
)

const (
	Variable     = ast.Variable
	IntValue     = ast.IntValue
	FloatValue   = ast.FloatValue
	StringValue  = ast.StringValue
	BlockValue   = ast.BlockValue
	BooleanValue = ast.BooleanValue
	NullValue    = ast.NullValue
	EnumValue    = ast.EnumValue
	ListValue    = ast.ListValue
	ObjectValue  = ast.ObjectValue
)
