// Package validation checks untyped procedure input against the shape declared by a Go struct
// before the input reaches persistence.
//
// The shape is read from the struct itself: `json` tags name the fields, the Go type gives the
// expected primitive (string, number, integer, date) and `validate` tags add
// go-playground/validator rules such as required, min=0 or email.
//
//	type createInput struct {
//	    Name   string   `json:"name" validate:"required"`
//	    Budget *float64 `json:"budget" validate:"omitempty,min=0"`
//	}
//
//	var in createInput
//	if err := validation.Decode(raw, &in); err != nil {
//	    return nil, err // *appErrors.ValidationError
//	}
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
)

// Expected type names reported in field errors.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeDate    = "date"
	TypeObject  = "object"
)

// maxExactFloatInt is the largest magnitude a float64 holds without losing integer precision.
const maxExactFloatInt = 1 << 53

// DateOnlyLayout is accepted for date fields next to RFC 3339.
const DateOnlyLayout = "2006-01-02"

var (
	validate     *validator.Validate
	validateOnce sync.Once
	timeType     = reflect.TypeOf(time.Time{})
)

// GetValidator returns the shared validator, reporting json field names.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

type fieldShape struct {
	name     string
	expected string
}

// Decode validates raw against the struct dst points to and fills dst on success.
// Every offending field is reported in one *appErrors.ValidationError.
func Decode(raw []byte, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	verr := &appErrors.ValidationError{}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		verr.Add("input", TypeObject, "expected an object")
		return verr
	}

	shapes := shapeOf(reflect.TypeOf(dst).Elem())
	reported := map[string]bool{}
	for _, s := range shapes {
		v, ok := obj[s.name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		normalized, msg := checkType(v, s.expected)
		if msg != "" {
			verr.Add(s.name, s.expected, msg)
			reported[s.name] = true
			delete(obj, s.name)
			continue
		}
		obj[s.name] = normalized
	}

	cleaned, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("re-encode input: %w", err)
	}
	if err := json.Unmarshal(cleaned, dst); err != nil {
		verr.Add("input", TypeObject, err.Error())
		return verr
	}

	if err := GetValidator().Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate input: %w", err)
		}
		expected := map[string]string{}
		for _, s := range shapes {
			expected[s.name] = s.expected
		}
		for _, fe := range fieldErrs {
			if reported[fe.Field()] {
				continue
			}
			verr.Add(fe.Field(), expected[fe.Field()], ruleMessage(fe))
		}
	}

	return verr.Err()
}

func shapeOf(t reflect.Type) []fieldShape {
	var shapes []fieldShape
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonName(f)
		if name == "" || !f.IsExported() {
			continue
		}
		shapes = append(shapes, fieldShape{name: name, expected: expectedType(f.Type)})
	}
	return shapes
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func expectedType(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return TypeDate
	}
	switch t.Kind() {
	case reflect.String:
		return TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeNumber
	default:
		return TypeObject
	}
}

// checkType returns the value to decode (dates are normalised to RFC 3339) or a failure message.
func checkType(v json.RawMessage, expected string) (json.RawMessage, string) {
	switch expected {
	case TypeString:
		var s string
		if json.Unmarshal(v, &s) != nil {
			return nil, "expected string"
		}
	case TypeNumber:
		var n json.Number
		if v[0] == '"' || json.Unmarshal(v, &n) != nil {
			return nil, "expected number"
		}
		if _, err := n.Float64(); err != nil {
			return nil, "expected number"
		}
	case TypeInteger:
		var n json.Number
		if v[0] == '"' || json.Unmarshal(v, &n) != nil {
			return nil, "expected integer"
		}
		if _, err := n.Int64(); err == nil {
			break
		}
		// integral exponent forms such as 1e2
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloatInt {
			return nil, "expected integer"
		}
		return json.RawMessage(strconv.FormatInt(int64(f), 10)), ""
	case TypeDate:
		var s string
		if json.Unmarshal(v, &s) != nil {
			return nil, "expected date"
		}
		t, err := ParseDate(s)
		if err != nil {
			return nil, "expected date"
		}
		out, _ := json.Marshal(t.Format(time.RFC3339Nano))
		return out, ""
	}
	return v, ""
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(DateOnlyLayout, s)
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	default:
		return fmt.Sprintf("failed %s rule", fe.Tag())
	}
}
