// Package validate checks request structs against `validate` struct tags.
//
// Supported rules (comma-separated):
//
//	required        field must not be zero/empty (nil pointers included)
//	nullable        if empty, skip the remaining rules for this field
//	email           valid email address
//	min=N           string: min rune length | number: min value
//	max=N           string: max rune length | number: max value
//	gt=N            number greater than N
//
// Nested structs (and non-nil pointers to structs) are walked, and their
// fields are reported with a dotted path such as "usuario.email".
//
// Errors come back in declaration order so callers can short-circuit on the
// first one:
//
//	if errs := validate.Required(&in); errs.Any() {
//	    return apperr.BadRequest(errs.First().Message)
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// Errors is an ordered list of failures, at most one per field.
type Errors []FieldError

// Any reports whether there is at least one failure.
func (e Errors) Any() bool { return len(e) > 0 }

// First returns the first failure or nil.
func (e Errors) First() *FieldError {
	if len(e) == 0 {
		return nil
	}
	return &e[0]
}

// Struct runs every rule on v.
func Struct(v any) Errors {
	return walk(v, func(string) bool { return true })
}

// Required runs only the presence rule on v.
func Required(v any) Errors {
	return walk(v, func(rule string) bool { return rule == "required" })
}

var timeType = reflect.TypeOf(time.Time{})

func walk(v any, keep func(rule string) bool) Errors {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var errs Errors
	walkStruct(rv, "", keep, &errs)
	return errs
}

func walkStruct(rv reflect.Value, prefix string, keep func(string) bool, errs *Errors) {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		value := rv.Field(i)
		name := prefix + jsonFieldName(field)
		rules := splitRules(field.Tag.Get("validate"))

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		failed := false
		for _, rule := range rules {
			key, _, _ := strings.Cut(rule, "=")
			if key == "nullable" || !keep(key) {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				*errs = append(*errs, FieldError{Field: name, Rule: key, Message: msg})
				failed = true
				break
			}
		}
		if failed {
			continue
		}

		if nested, ok := structValue(value); ok {
			walkStruct(nested, name+".", keep, errs)
		}
	}
}

func structValue(v reflect.Value) (reflect.Value, bool) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || v.Type() == timeType {
		return reflect.Value{}, false
	}
	return v, true
}

func applyRule(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	if v.Kind() == reflect.Ptr && key != "required" {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	raw := fmt.Sprintf("%v", v.Interface())

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}

	case "min":
		n := parseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(len([]rune(raw))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n := parseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if float64(len([]rune(raw))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "gt":
		if toFloat(v) <= parseFloat(param) {
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		}
	}

	return ""
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		return v.IsZero()
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func splitRules(tag string) []string {
	if tag == "" {
		return nil
	}
	var rules []string
	for _, r := range strings.Split(tag, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rules = append(rules, r)
		}
	}
	return rules
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
