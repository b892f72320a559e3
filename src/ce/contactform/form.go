package contactform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/foliosite/folio/src/lib/errors"
	"github.com/foliosite/folio/src/lib/shttp"
	"github.com/foliosite/folio/src/lib/slog"
)

// State is the state of the form as shown to the user.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

const (
	MsgNameRequired    = "Please enter your name."
	MsgEmailRequired   = "Please enter your email."
	MsgEmailInvalid    = "Please enter a valid email."
	MsgMessageRequired = "Tell me a little about what you need."
	MsgSent            = "Message sent. I’ll get back to you shortly."
	MsgServerFallback  = "Something went wrong."
	MsgNetworkFallback = "Could not send message. Please try again."
)

// DefaultEndpoint is the path of the contact endpoint on the api.
const DefaultEndpoint = "/api/contact"

// ErrSubmitting is returned when Submit is called while a previous
// submission is still in flight.
var ErrSubmitting = errors.New(errors.ErrorTypeValidation, "a submission is already in progress")

// ErrInvalid is returned when the local validation fails. The field
// messages are available through Form.Errors.
var ErrInvalid = errors.New(errors.ErrorTypeValidation, "the form has invalid fields")

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Fields are the values entered by the user.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks the fields before a request is issued. It mirrors the
// server rules loosely, the server has the final word.
func Validate(f Fields) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = MsgNameRequired
	}

	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = MsgEmailRequired
	} else if !emailRe.MatchString(f.Email) {
		errs["email"] = MsgEmailInvalid
	}

	if strings.TrimSpace(f.Message) == "" {
		errs["message"] = MsgMessageRequired
	}

	return errs
}

// Form keeps the state of a contact form between submissions.
type Form struct {
	// URL is the absolute url of the contact endpoint.
	URL     string
	Timeout time.Duration

	mux    sync.Mutex
	fields Fields
	errors map[string]string
	state  State
	status string
}

// New returns an idle form that posts to the given url.
func New(url string) *Form {
	return &Form{
		URL:     url,
		Timeout: 15 * time.Second,
		state:   StateIdle,
		errors:  map[string]string{},
	}
}

// Set replaces the field values.
func (f *Form) Set(fields Fields) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.fields = fields
}

// Fields returns the current field values.
func (f *Form) Fields() Fields {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.fields
}

// State returns the current state.
func (f *Form) State() State {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.state
}

// Status returns the message shown next to the submit button. It is empty
// unless the form is in the success or error state.
func (f *Form) Status() string {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.status
}

// Errors returns the field messages of the last local validation.
func (f *Form) Errors() map[string]string {
	f.mux.Lock()
	defer f.mux.Unlock()

	errs := make(map[string]string, len(f.errors))

	for k, v := range f.errors {
		errs[k] = v
	}

	return errs
}

type response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Submit validates the fields and posts them to the endpoint. The returned
// error is nil only when the server accepted the submission. On failure the
// form lands in the error state with the message to display in Status.
func (f *Form) Submit(ctx context.Context) error {
	f.mux.Lock()

	if f.state == StateSubmitting {
		f.mux.Unlock()
		return ErrSubmitting
	}

	f.errors = Validate(f.fields)

	if len(f.errors) > 0 {
		f.mux.Unlock()
		return ErrInvalid
	}

	fields := f.fields
	f.state = StateSubmitting
	f.status = ""
	f.mux.Unlock()

	status, err := f.post(ctx, fields)

	f.mux.Lock()
	defer f.mux.Unlock()

	if err != nil {
		f.state = StateError
		f.status = status
		return err
	}

	f.state = StateSuccess
	f.status = MsgSent
	f.fields = Fields{}
	f.errors = map[string]string{}

	return nil
}

// post returns the message to display when the request fails.
func (f *Form) post(ctx context.Context, fields Fields) (string, error) {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")

	res, err := shttp.NewRequest(shttp.MethodPost, f.URL).
		WithContext(ctx).
		WithTimeout(f.Timeout).
		Headers(headers).
		Payload(fields).
		Do()

	if err != nil {
		slog.Errorf("contact form request failed: %v", err)
		return MsgNetworkFallback, err
	}

	defer res.Body.Close()

	data := response{}
	body, err := io.ReadAll(res.Body)

	if err == nil {
		err = json.Unmarshal(body, &data)
	}

	if err != nil {
		return MsgNetworkFallback, errors.Wrapf(err, errors.ErrorTypeExternal, "unexpected response: status=%d", res.StatusCode)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := data.Error

		if msg == "" {
			msg = MsgServerFallback
		}

		return msg, errors.New(errors.ErrorTypeExternal, msg).WithContext("status", res.StatusCode)
	}

	return "", nil
}
