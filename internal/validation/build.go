// Package validation reports field-level problems with build documents and
// catalog files.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/meur/buildforge/internal/models"
)

const rootField = "(root)"

// FieldError describes one invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is a list of field problems. It satisfies error so callers can
// hand it around like any other failure.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator, which reports fields by their
// JSON names
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// Struct validates a struct using its tags
func Struct(s interface{}) FieldErrors {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	return formatValidationError(err)
}

// Build validates a build document: field tags first, then the document
// invariants (dense positions, ids unique across blocks and items).
func Build(b *models.Build) FieldErrors {
	if b == nil {
		return FieldErrors{{Field: rootField, Message: "document is required"}}
	}

	errs := Struct(b)

	// Block and item ids share one namespace, the one build.Document issues from
	seen := make(map[string]string)
	claim := func(id, field string) {
		if id == "" {
			return
		}
		if first, dup := seen[id]; dup {
			errs = append(errs, FieldError{Field: field, Message: "duplicates " + first})
			return
		}
		seen[id] = field
	}

	for i, blk := range b.Blocks {
		prefix := fmt.Sprintf("blocks[%d]", i)

		if blk.Position != i {
			errs = append(errs, FieldError{
				Field:   prefix + ".position",
				Message: fmt.Sprintf("must equal block index %d", i),
			})
		}

		claim(blk.ID, prefix+".id")
		for j, it := range blk.Items {
			claim(it.ID, fmt.Sprintf("%s.items[%d].id", prefix, j))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// formatValidationError converts validator errors into field errors without
// leaking Go type names
func formatValidationError(err error) FieldErrors {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return FieldErrors{{Field: rootField, Message: "invalid document"}}
	}

	out := make(FieldErrors, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{
			Field:   fieldPath(e.Namespace()),
			Message: tagMessage(e),
		})
	}
	return out
}

// fieldPath drops the leading struct name from a namespace such as
// "Build.blocks[0].items[1].count"
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "number":
		return "must be a numeric item id"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
