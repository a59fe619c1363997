package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hanpama/gqldirective/directive"
	"github.com/hanpama/gqldirective/directive/builtin"
	"github.com/hanpama/gqldirective/executor"
	"github.com/hanpama/gqldirective/internal/introspection"
	"github.com/hanpama/gqldirective/internal/otel"
	"github.com/hanpama/gqldirective/internal/reqid"
	"github.com/hanpama/gqldirective/schema"
)

const rootUsage = `gqldirective - apply schema directives to GraphQL resolvers

USAGE:
  gqldirective <command> [flags]

COMMANDS:
  exec             Execute a query against an SDL file and a JSON root value
  inspect          Show which directive occurrence governs each field
  help             Show help for any command
`

const execUsage = `exec FLAGS:
  -schema <file>            GraphQL SDL file (required)
  -query <query>            GraphQL query document (required)
  -operation <name>         Operation to run when the document has several
  -variables <json>         Variables as a JSON object
  -data <file>              JSON file used as the root value
  -role <role>              Request role checked by @auth
  -prelude <bool>           Prepend the stock directive declarations (default: true)
  -introspection <bool>     Answer __schema and __type queries (default: true)
  -pretty                   Pretty-print the JSON result
  -log.level <level>        debug, info, warn or error (default: warn)
  -otel.endpoint <addr>     OTLP collector endpoint for @trace spans
  -otel.service <name>      OpenTelemetry service name (default: gqldirective)
`

const inspectUsage = `inspect FLAGS:
  -schema <file>            GraphQL SDL file (required)
  -prelude <bool>           Prepend the stock directive declarations (default: true)
  -sdl                      Also print the schema with its directive uses
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := args[0]
	cmdArgs := args[1:]
	switch cmd {
	case "exec":
		return cmdExec(cmdArgs, stdout, stderr)
	case "inspect":
		return cmdInspect(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "exec":
		fmt.Fprint(stdout, execUsage)
	case "inspect":
		fmt.Fprint(stdout, inspectUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdExec(args []string, stdout, stderr io.Writer) error {
	schemaFile := ""
	query := ""
	operation := ""
	variables := ""
	dataFile := ""
	role := ""
	prelude := true
	enableIntrospection := true
	pretty := false
	logLevel := "warn"
	otelEndpoint := ""
	otelService := "gqldirective"

	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	fs.StringVar(&query, "query", query, "GraphQL query document")
	fs.StringVar(&operation, "operation", operation, "Operation name")
	fs.StringVar(&variables, "variables", variables, "Variables as a JSON object")
	fs.StringVar(&dataFile, "data", dataFile, "JSON root value file")
	fs.StringVar(&role, "role", role, "Request role")
	fs.BoolVar(&prelude, "prelude", prelude, "Prepend stock directive declarations")
	fs.BoolVar(&enableIntrospection, "introspection", enableIntrospection, "Enable GraphQL introspection")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the JSON result")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, execUsage)
		return err
	}
	if schemaFile == "" || query == "" {
		fmt.Fprint(stderr, execUsage)
		return fmt.Errorf("-schema and -query are required")
	}

	logger, err := newLogger(logLevel, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, id := reqid.NewContext(context.Background())
	logger = logger.With(zap.Uint64("execution", id))
	shutdown, err := otel.Setup(ctx, otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	s, _, err := loadSchema(schemaFile, prelude, logger)
	if err != nil {
		return err
	}
	if enableIntrospection {
		if err := introspection.Enable(s); err != nil {
			return err
		}
	}

	var vars map[string]any
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &vars); err != nil {
			return fmt.Errorf("parse variables: %w", err)
		}
	}
	var root any
	if dataFile != "" {
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &root); err != nil {
			return fmt.Errorf("parse %s: %w", dataFile, err)
		}
	}

	if role != "" {
		ctx = builtin.WithRole(ctx, role)
	}
	exec := executor.NewExecutor(executor.NewResolverRuntime(s), s, executor.WithLogger(logger))
	result := exec.Execute(ctx, query, operation, vars, root)
	logger.Debug("query executed", zap.String("operation", operation), zap.Int("errors", len(result.Errors)))

	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

func cmdInspect(args []string, stdout, stderr io.Writer) error {
	schemaFile := ""
	prelude := true
	printSDL := false

	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	fs.BoolVar(&prelude, "prelude", prelude, "Prepend stock directive declarations")
	fs.BoolVar(&printSDL, "sdl", printSDL, "Print the schema with its directive uses")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, inspectUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(stderr, inspectUsage)
		return fmt.Errorf("-schema is required")
	}

	s, tracker, err := loadSchema(schemaFile, prelude, zap.NewNop())
	if err != nil {
		return err
	}

	for _, t := range s.OrderedTypes() {
		if t.Kind != schema.TypeKindObject {
			continue
		}
		for _, f := range t.Fields {
			applied := tracker.Applied(f)
			if len(applied) == 0 {
				continue
			}
			names := make([]string, 0, len(applied))
			for name := range applied {
				names = append(names, name)
			}
			slices.Sort(names)
			uses := make([]string, len(names))
			for i, name := range names {
				uses[i] = fmt.Sprintf("@%s(%s)", name, applied[name])
			}
			fmt.Fprintf(stdout, "%s.%s\t%s\n", t.Name, f.Name, strings.Join(uses, " "))
		}
	}
	if printSDL {
		fmt.Fprint(stdout, "\n", schema.Render(s))
	}
	return nil
}

// loadSchema builds the schema in file and applies every stock directive to
// it.
func loadSchema(file string, prelude bool, logger *zap.Logger) (*schema.Schema, *directive.Tracker, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	sdl := string(raw)
	if prelude {
		sdl = builtin.SDL + sdl
	}
	s, err := schema.BuildFromSDL(sdl)
	if err != nil {
		return nil, nil, fmt.Errorf("build schema: %w", err)
	}

	tracker := directive.NewTracker()
	ds, err := directive.NewSchemaDirectives(
		builtin.All(builtin.WithLogger(logger)),
		directive.WithTracker(tracker),
		directive.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := ds.Apply(s); err != nil {
		return nil, nil, fmt.Errorf("apply directives: %w", err)
	}
	return s, tracker, nil
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("-log.level: %w", err)
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}
