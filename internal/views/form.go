package views

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	dom "taskboard/internal/domain"

	"github.com/go-playground/validator/v10"
)

const (
	TitleMaxLen       = 120
	DescriptionMaxLen = 1000
)

// TaskForm is the task creation form. Field names in FieldErrors follow the
// form tags.
type TaskForm struct {
	Title       string `form:"title" json:"title" validate:"required,max=120"`
	Description string `form:"description" json:"description" validate:"max=1000"`
	Priority    string `form:"priority" json:"priority" validate:"required,oneof=low medium high"`
}

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, field := range []string{"title", "description", "priority"} {
		if msg, ok := fe[field]; ok {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

// TaskAdder is the store operation a valid form submits to.
type TaskAdder interface {
	AddTask(in dom.NewTask) dom.Task
}

// DialogState is the creation dialog: whether it is open, its current
// values and the errors of the last submit.
type DialogState struct {
	Open   bool
	Form   TaskForm
	Errors FieldErrors
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewTaskForm returns an empty form with the default priority.
func NewTaskForm() TaskForm {
	return TaskForm{Priority: string(dom.PriorityMedium)}
}

// Normalize trims surrounding whitespace from every field.
func (f TaskForm) Normalize() TaskForm {
	return TaskForm{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Priority:    strings.ToLower(strings.TrimSpace(f.Priority)),
	}
}

// Validate checks the normalized form and returns nil when it is valid.
func (f TaskForm) Validate() FieldErrors {
	err := validate.Struct(f.Normalize())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

// NewTask converts a normalized form into store input.
func (f TaskForm) NewTask() dom.NewTask {
	n := f.Normalize()
	return dom.NewTask{
		Title:       n.Title,
		Description: n.Description,
		Priority:    dom.Priority(n.Priority),
	}
}

// Submit validates f and, if valid, adds the task. On success the returned
// dialog is closed with a fresh form; on failure nothing is added and the
// dialog stays open with the submitted values and their errors.
func Submit(adder TaskAdder, f TaskForm) (*dom.Task, DialogState) {
	if errs := f.Validate(); errs != nil {
		return nil, DialogState{Open: true, Form: f, Errors: errs}
	}
	t := adder.AddTask(f.NewTask())
	return &t, DialogState{Open: false, Form: NewTaskForm()}
}

func message(fe validator.FieldError) string {
	label := strings.ToUpper(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return label + " is invalid"
}
