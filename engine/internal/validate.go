package internal

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/flastex/go-bpmn/engine"
	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0] // e.g. `json:"tokenId,omitempty"` -> tokenId
		if name == "-" {
			return strings.ToLower(f.Name[:1]) + f.Name[1:]
		}
		return name
	})
	return validate
}

// validateCmd validates a command, before it is executed.
// If the command is invalid, an error of type [engine.ErrorValidation] is returned, providing a cause per invalid field.
func validateCmd(title string, cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return engine.Error{
			Type:   engine.ErrorBug,
			Title:  title,
			Detail: fmt.Sprintf("failed to validate command: %v", err),
		}
	}

	causes := make([]engine.ErrorCause, len(validationErrors))
	for i, fieldError := range validationErrors {
		var detail string
		switch fieldError.Tag() {
		case "excludes":
			detail = fmt.Sprintf("must not contain %q", fieldError.Param())
		case "max":
			detail = fmt.Sprintf("exceeds a maximum of %s", fieldError.Param())
		case "required":
			detail = "is required"
		default:
			detail = "is invalid"
		}

		causes[i] = engine.ErrorCause{
			Pointer: pointer(fieldError.Namespace()),
			Type:    fieldError.Tag(),
			Detail:  detail,
		}
	}

	return engine.Error{
		Type:   engine.ErrorValidation,
		Title:  title,
		Detail: "command is invalid",
		Causes: causes,
	}
}

// pointer converts a validator namespace into a JSON pointer - e.g. ResumeTokenCmd.variables[x] -> #/variables/x
func pointer(namespace string) string {
	var sb strings.Builder

	i := strings.IndexRune(namespace, '.')
	if i == -1 {
		return "#"
	}

	sb.WriteString("#")
	for _, r := range namespace[i:] {
		switch r {
		case '.', '[':
			sb.WriteRune('/')
		case ']':
			continue
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
