package outline

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// hexColorPattern accepts #rgb, #rrggbb and #rrggbbaa.
var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// enum is satisfied by every closed string variant in this package.
type enum interface {
	Valid() bool
}

var validate = newValidator()

// now is the clock used by touch. Tests may swap it.
var now = func() time.Time { return time.Now().UTC() }

func newValidator() *validator.Validate {
	v := validator.New()

	// Report violations by their wire names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enum)
		return ok && e.Valid()
	})

	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v.RegisterValidation("plotcolor", func(fl validator.FieldLevel) bool {
		return hexColorPattern.MatchString(fl.Field().String())
	})

	return v
}

// checkStruct runs the struct-tag rules on entity and converts the result to
// violations.
func checkStruct(entity any) []Violation {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Rule: "struct", Message: err.Error()}}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return violations
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s (got %v)", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be at most %s (got %v)", fe.Param(), fe.Value())
	case "enum":
		return fmt.Sprintf("unknown value %q", fmt.Sprint(fe.Value()))
	case "plotcolor":
		return fmt.Sprintf("%q is not a hex colour (#rgb, #rrggbb or #rrggbbaa)", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

func requireID(field string, id uuid.UUID) []Violation {
	if id == uuid.Nil {
		return []Violation{{Field: field, Rule: "required", Message: "is required"}}
	}
	return nil
}

// matchIDSet checks that ordered names every identity in current exactly once.
// It is the single gate for all reorder operations.
func matchIDSet(current, ordered []uuid.UUID) []Violation {
	var violations []Violation

	known := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		known[id] = false
	}

	for _, id := range ordered {
		seen, ok := known[id]
		switch {
		case !ok:
			violations = append(violations, Violation{
				Field: "ordered_ids", Rule: "unknown",
				Message: fmt.Sprintf("%s is not a member", id),
			})
		case seen:
			violations = append(violations, Violation{
				Field: "ordered_ids", Rule: "duplicate",
				Message: fmt.Sprintf("%s appears more than once", id),
			})
		default:
			known[id] = true
		}
	}

	for _, id := range current {
		if !known[id] {
			violations = append(violations, Violation{
				Field: "ordered_ids", Rule: "missing",
				Message: fmt.Sprintf("%s is missing", id),
			})
		}
	}

	return violations
}

func checkPosition(entity string, index int) error {
	if index < 0 {
		return invalid(entity, "order_index", "min",
			fmt.Sprintf("must be at least 0 (got %d)", index))
	}
	return nil
}
