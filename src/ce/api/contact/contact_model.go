package contact

import (
	"errors"
	"fmt"

	"github.com/foliosite/folio/src/lib/shttp/shttperr"
	"github.com/foliosite/folio/src/lib/utils"
)

// Submission is a validated contact form submission.
type Submission struct {
	Name    string `json:"name" validate:"min=1,max=100"`
	Email   string `json:"email" validate:"email"`
	Message string `json:"message" validate:"min=10,max=2000"`
}

// fields lists the submission fields in the order they are checked.
var fields = []string{"name", "email", "message"}

// messages maps field:tag pairs to the issue reported to the client.
var messages = map[string]string{
	"name:min":    "Name is required",
	"name:max":    "String must contain at most 100 character(s)",
	"email:email": "Invalid email",
	"message:min": "Message is too short",
	"message:max": "String must contain at most 2000 character(s)",
}

// Parse turns an untyped candidate, usually a decoded JSON body, into a
// submission. The returned error lists one issue per offending field.
// Values are returned as received: no trimming, no sanitization.
// Unknown fields are ignored.
func Parse(candidate any) (*Submission, *shttperr.ValidationError) {
	verr := &shttperr.ValidationError{}
	obj, ok := candidate.(map[string]any)

	if !ok {
		verr.SetError("body", fmt.Sprintf("Expected object, received %s", typeOf(candidate)))
		return nil, verr
	}

	values := map[string]string{}

	for _, field := range fields {
		value, present := obj[field]

		if !present {
			verr.SetError(field, "Required")
			continue
		}

		str, ok := value.(string)

		if !ok {
			verr.SetError(field, fmt.Sprintf("Expected string, received %s", typeOf(value)))
			continue
		}

		values[field] = str
	}

	sub := &Submission{
		Name:    values["name"],
		Email:   values["email"],
		Message: values["message"],
	}

	if err := sub.Validate(); err != nil {
		for field, issue := range err.Errors {
			// Type issues are already set and take precedence.
			verr.SetError(field, issue)
		}
	}

	if verr.ToError() != nil {
		return nil, verr
	}

	return sub, nil
}

// Validate checks the length and format rules of the submission.
// Lengths are counted in characters, not bytes.
func (s *Submission) Validate() *shttperr.ValidationError {
	verr := &shttperr.ValidationError{}
	err := utils.Validator().Struct(s)

	if err == nil {
		return nil
	}

	var errs utils.ValidationErrors

	if !errors.As(err, &errs) {
		verr.SetError("body", err.Error())
		return verr
	}

	for _, fe := range errs {
		field := fe.Field()

		if msg, ok := messages[field+":"+fe.Tag()]; ok {
			verr.SetError(field, msg)
		} else {
			verr.SetError(field, fe.Error())
		}
	}

	return verr.ToError()
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
