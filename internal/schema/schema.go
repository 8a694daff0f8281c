// Package schema decodes untrusted JSON payloads into typed values and checks
// their declared constraints.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"buddy-server/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Decode parses data as a T and validates it. Fields T does not declare are
// rejected. On failure the returned error is a Validation error naming the
// first offending field and the zero T is returned.
func Decode[T any](data []byte) (T, error) {
	var out T
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(&out)
	if err == nil && dec.More() {
		err = errors.New("trailing data after JSON value")
	}
	if err != nil {
		var zero T
		return zero, decodeError(reflect.TypeOf(out), err)
	}
	if err := Validate(out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Validate checks the declared constraints of an already typed value.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("invalid payload", "", nil)
	}

	fe := fieldErrs[0]
	field := fieldPath(fe.Namespace())
	return apperr.Validation(ruleMessage(field, fe), field, fe.Value())
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func ruleMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", field)
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", field, fe.Param())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", field)
	case "uuid":
		return fmt.Sprintf("Field '%s' must be a valid UUID", field)
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s characters long", field, fe.Param())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' rule", field, fe.Tag())
	}
}

func decodeError(root reflect.Type, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := lookupField(root, typeErr.Struct, typeErr.Field)
		if field == "" {
			field = "body"
		}
		expected := "value"
		if typeErr.Type != nil {
			expected = typeErr.Type.Kind().String()
		}
		return apperr.Validation(
			fmt.Sprintf("Field '%s' has invalid type: expected %s, got %s", field, expected, typeErr.Value),
			field,
			nil,
		)
	}
	if name, ok := unknownField(err); ok {
		return apperr.Validation(fmt.Sprintf("Field '%s' is not allowed", name), name, nil)
	}
	return apperr.Validation("Malformed JSON or invalid request body", "body", nil)
}

// unknownField extracts the key from the decoder's unknown field error.
func unknownField(err error) (string, bool) {
	quoted, ok := strings.CutPrefix(err.Error(), "json: unknown field ")
	if !ok {
		return "", false
	}
	name, uerr := strconv.Unquote(quoted)
	if uerr != nil {
		return "", false
	}
	return name, true
}

// lookupField resolves a Go struct and field name reported by the decoder
// into the dotted JSON path of the first matching field, searching nested
// structs breadth first. An empty structName matches any struct.
func lookupField(root reflect.Type, structName, goName string) string {
	if goName == "" {
		return ""
	}
	// the decoder may report a dotted Go path
	if i := strings.LastIndex(goName, "."); i >= 0 {
		goName = goName[i+1:]
	}

	type node struct {
		t      reflect.Type
		prefix string
	}
	queue := []node{{t: root}}
	seen := map[reflect.Type]bool{}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		t := n.t
		for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct || seen[t] {
			continue
		}
		seen[t] = true
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := jsonName(f)
			if name == "" {
				name = f.Name
			}
			path := name
			if n.prefix != "" {
				path = n.prefix + "." + name
			}
			if f.Name == goName && (structName == "" || t.Name() == structName) {
				return path
			}
			queue = append(queue, node{t: f.Type, prefix: path})
		}
	}
	return ""
}
