package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Pagination defaults. Listing endpoints declare their size field bounded
// by the same ceiling, so the clamp is enforced both by the schema and,
// defensively, by PaginationLimit.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// FieldIssue reports one schema violation as a field path plus message,
// suitable for direct user display. The offending raw input is never
// echoed back.
type FieldIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the outcome of a schema check. On success the caller's
// destination struct holds the parsed data.
type Result struct {
	Valid  bool
	Issues []FieldIssue
}

// failure builds an invalid result from a single issue
func failure(path, message string) Result {
	return Result{Valid: false, Issues: []FieldIssue{{Path: path, Message: message}}}
}

// Schema validates structured request input against tagged struct
// definitions using go-playground/validator. Construct one per process
// and inject it; a Schema is safe for concurrent use.
type Schema struct {
	v *validator.Validate
}

// NewSchema creates a schema validator that reports json tag names in
// field paths
func NewSchema() *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Schema{v: v}
}

// Body decodes raw as strict JSON into dst (a struct pointer with
// validate tags) and validates it. Unknown fields, malformed JSON and
// tag violations all surface as field issues, never as errors.
func (s *Schema) Body(raw []byte, dst any) Result {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return failure("body", "request body is not valid JSON for this endpoint")
	}
	// Reject trailing garbage after the JSON document
	if dec.More() {
		return failure("body", "request body contains unexpected trailing data")
	}
	return s.check(dst)
}

// Query maps params onto dst (a struct pointer whose fields carry `query`
// tags; string, int and bool fields are supported) and validates it.
func (s *Schema) Query(params url.Values, dst any) Result {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return failure("query", "destination must be a struct pointer")
	}
	if issue := bindQueryStruct(params, rv.Elem()); issue != nil {
		return Result{Valid: false, Issues: []FieldIssue{*issue}}
	}

	return s.check(dst)
}

// bindQueryStruct walks the struct's fields, recursing into embedded
// structs, and sets any field whose `query` tag names a present parameter
func bindQueryStruct(params url.Values, elem reflect.Value) *FieldIssue {
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := elem.Field(i)

		if field.Anonymous && fv.Kind() == reflect.Struct {
			if issue := bindQueryStruct(params, fv); issue != nil {
				return issue
			}
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("query"), ",")
		if name == "" || name == "-" {
			continue
		}
		if !params.Has(name) {
			continue
		}
		value := params.Get(name)

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(value)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return &FieldIssue{Path: name, Message: "must be an integer"}
			}
			fv.SetInt(n)
		case reflect.Bool:
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return &FieldIssue{Path: name, Message: "must be a boolean"}
			}
			fv.SetBool(b)
		default:
			return &FieldIssue{Path: name, Message: "unsupported parameter type"}
		}
	}
	return nil
}

// check runs tag validation and maps violations to field issues
func (s *Schema) check(dst any) Result {
	err := s.v.Struct(dst)
	if err == nil {
		return Result{Valid: true}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: the destination itself is not validatable
		return failure("body", "request shape is not supported")
	}

	issues := make([]FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, FieldIssue{
			Path:    fieldPath(fe),
			Message: messageFor(fe),
		})
	}
	return Result{Valid: false, Issues: issues}
}

// fieldPath strips the root struct name from the namespace so paths read
// like "author.email" rather than "CreatePostRequest.author.email"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// messageFor renders a violation without including the submitted value
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s characters or items", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s characters or items", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid":
		return "must be a valid identifier"
	default:
		return "is invalid"
	}
}

// Pagination is the shared paging shape for listing endpoints. The limit
// field's schema bound matches MaxPageSize, so schema validation and the
// defensive clamp agree.
type Pagination struct {
	Page  int `json:"page" query:"page" validate:"omitempty,gte=1"`
	Limit int `json:"limit" query:"limit" validate:"omitempty,gte=1,lte=50"`
}

// Normalize fills schema defaults and clamps the page size
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageSize
	}
	p.Limit = PaginationLimit(p.Limit, MaxPageSize)
}

// PaginationLimit clamps a requested page size into [1, max]. Values
// below 1 become 1; values above max become max. A non-positive max falls
// back to MaxPageSize.
func PaginationLimit(requested, max int) int {
	if max < 1 {
		max = MaxPageSize
	}
	if requested < 1 {
		return 1
	}
	if requested > max {
		return max
	}
	return requested
}
