package validation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON schema
type Schema struct {
	name   string
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON schema document registered under name
func CompileSchema(name string, raw []byte) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}

	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	return &Schema{name: name, schema: compiled}, nil
}

// ValidateBytes validates a JSON document, returning one FieldError per
// failed leaf constraint. A document that is not JSON at all is reported
// against the root.
func (s *Schema) ValidateBytes(data []byte) FieldErrors {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return FieldErrors{{Field: rootField, Message: "invalid JSON: " + err.Error()}}
	}

	err = s.schema.Validate(inst)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return FieldErrors{{Field: rootField, Message: err.Error()}}
	}

	var out FieldErrors
	collectSchemaErrors(verr, &out)
	return out
}

// collectSchemaErrors walks the cause tree and keeps the leaves
func collectSchemaErrors(err *jsonschema.ValidationError, out *FieldErrors) {
	if len(err.Causes) == 0 {
		*out = append(*out, FieldError{
			Field:   schemaLocation(err.InstanceLocation),
			Message: schemaMessage(err),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}

func schemaLocation(loc []string) string {
	if len(loc) == 0 {
		return rootField
	}
	return "/" + strings.Join(loc, "/")
}

func schemaMessage(err *jsonschema.ValidationError) string {
	if err.ErrorKind != nil {
		if path := err.ErrorKind.KeywordPath(); len(path) > 0 {
			return strings.Join(path, ".") + " validation failed"
		}
	}
	return "validation failed"
}
