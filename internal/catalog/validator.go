package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/catalog.schema.json
var schemaBytes []byte

var printer = message.NewPrinter(language.English)

// ValidationResult is the outcome of checking a document against the schema.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation.
type ValidationIssue struct {
	Path    string // JSON pointer into the document, "/pip/0/url"
	Message string
	Keyword string
}

var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding catalog schema: %w", err)
	}
	const id = "catalog.schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(id, doc); err != nil {
		return nil, fmt.Errorf("registering catalog schema: %w", err)
	}
	compiled, err := c.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("compiling catalog schema: %w", err)
	}
	return compiled, nil
})

// Validate checks a JSON or YAML catalog document against the schema.
// The error return is for syntax or schema compilation failures; schema
// violations are returned in the ValidationResult.
func Validate(data []byte) (*ValidationResult, error) {
	sch, err := schema()
	if err != nil {
		return nil, err
	}

	inst, err := instance(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return nil, err
	}

	verr := sch.Validate(inst)
	if verr == nil {
		return &ValidationResult{Valid: true}, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(verr, &ve) {
		return nil, fmt.Errorf("validating catalog: %w", verr)
	}
	return &ValidationResult{Issues: issuesOf(ve)}, nil
}

// ValidateFile reads a catalog file and validates it against the schema.
func ValidateFile(fsys afero.Fs, path string) (*ValidationResult, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return Validate(data)
}

// instance decodes data into the generic form the validator expects.
func instance(data []byte) (any, error) {
	if isJSON(data) {
		inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return inst, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	// Round-trip through JSON so numbers arrive as json.Number.
	jsonData, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}
	return inst, nil
}

// issuesOf flattens the error tree into its leaves, one issue per distinct
// location, keyword and message.
func issuesOf(root *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	seen := make(map[ValidationIssue]bool)

	var walk func(*jsonschema.ValidationError)
	walk = func(ve *jsonschema.ValidationError) {
		for _, cause := range ve.Causes {
			walk(cause)
		}
		if len(ve.Causes) > 0 || ve.ErrorKind == nil {
			return
		}
		kw := ve.ErrorKind.KeywordPath()
		if len(kw) == 0 {
			return
		}
		switch keyword := kw[len(kw)-1]; keyword {
		case "anyOf", "allOf", "$ref":
			// only repeat their causes
		default:
			issue := ValidationIssue{Keyword: keyword, Message: ve.ErrorKind.LocalizedString(printer)}
			if len(ve.InstanceLocation) > 0 {
				issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
			}
			if !seen[issue] {
				seen[issue] = true
				issues = append(issues, issue)
			}
		}
	}
	walk(root)

	if len(issues) == 0 {
		return []ValidationIssue{{Message: root.Error()}}
	}
	return issues
}

// normalizeYAML converts YAML-decoded values to JSON-compatible types.
// yaml.v3 decodes non-string keys as map[any]any, which json.Marshal rejects.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, v := range val {
			a[i] = normalizeYAML(v)
		}
		return a
	default:
		return val
	}
}
