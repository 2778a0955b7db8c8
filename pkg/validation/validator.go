package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Length bounds shared by request structs through the aliases below.
const (
	PasswordMin = 6
	PasswordMax = 72 // bcrypt input limit
	UsernameMin = 5
	UsernameMax = 12
	NameMin     = 2
	NameMax     = 50
	MobileMin   = 9
	MobileMax   = 25
)

var aliases = map[string]string{
	"pwd":        fmt.Sprintf("min=%d,max=%d", PasswordMin, PasswordMax),
	"username":   fmt.Sprintf("min=%d,max=%d", UsernameMin, UsernameMax),
	"personname": fmt.Sprintf("min=%d,max=%d", NameMin, NameMax),
	"mobile":     fmt.Sprintf("min=%d,max=%d", MobileMin, MobileMax),
}

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors (form tag when there is no JSON tag).
// - Registers alias tags for the account and contact bounds.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the tag-name function and aliases to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for alias, tags := range aliases {
		v.RegisterAlias(alias, tags)
	}
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var pe *time.ParseError
	if errors.As(err, &pe) {
		return map[string]string{"payload": "invalid date, expected YYYY-MM-DD"}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func lengthMessage(tags string) string {
	var lo, hi string
	for _, part := range strings.Split(tags, ",") {
		if v, ok := strings.CutPrefix(part, "min="); ok {
			lo = v
		}
		if v, ok := strings.CutPrefix(part, "max="); ok {
			hi = v
		}
	}
	return "must be between " + lo + " and " + hi + " characters long"
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if tags, ok := aliases[tag]; ok {
		return lengthMessage(tags)
	}

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "len":
		return "must be exactly " + param + " characters long"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "datetime":
		return "must match datetime format: " + param
	case "e164":
		return "must be a valid phone number"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
