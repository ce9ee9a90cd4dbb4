package editor

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/examdesk/internal/model"
)

// Issue is one problem found in a draft. Quiz is -1 for exam-level issues.
type Issue struct {
	Quiz  int
	Field string
	Rule  string
	Value string
}

func (i Issue) String() string {
	var msg string
	switch {
	case i.Field == "name" && i.Rule == "unique":
		msg = "an exam with this name already exists"
	case i.Field == "name":
		msg = "name is required"
	case i.Field == "quizzes":
		msg = "at least one quiz is required"
	case i.Field == "correct_options" && i.Rule == "subset":
		msg = fmt.Sprintf("correct option %q is not one of the options", i.Value)
	case i.Field == "correct_options":
		msg = "at least one correct option is required"
	default:
		msg = fmt.Sprintf("%s failed %s", i.Field, i.Rule)
	}
	if i.Quiz >= 0 {
		return fmt.Sprintf("quiz %d: %s", i.Quiz+1, msg)
	}
	return msg
}

// ValidationError lists every issue that blocks a submit.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return "invalid exam: " + strings.Join(parts, "; ")
}

type examForm struct {
	Name    string     `validate:"required"`
	Quizzes []quizForm `validate:"min=1,dive"`
}

type quizForm struct {
	Options        []string
	CorrectOptions []string `validate:"min=1"`
}

var (
	validate   = newValidator()
	quizIndexR = regexp.MustCompile(`Quizzes\[(\d+)\]`)
	fieldNames = map[string]string{
		"Name":           "name",
		"Quizzes":        "quizzes",
		"CorrectOptions": "correct_options",
	}
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		q := sl.Current().Interface().(quizForm)
		for _, c := range q.CorrectOptions {
			if !slices.Contains(q.Options, c) {
				sl.ReportError(q.CorrectOptions, "CorrectOptions", "CorrectOptions", "subset", c)
			}
		}
	}, quizForm{})
	return v
}

// Validate checks the draft and returns a *ValidationError listing every
// issue, or nil.
func (d *Draft) Validate() error {
	return ValidateExam(d.exam)
}

// ValidateExam checks e and returns a *ValidationError listing every issue,
// or nil.
func ValidateExam(e model.Exam) error {
	form := examForm{Name: strings.TrimSpace(e.Name), Quizzes: make([]quizForm, len(e.Quizzes))}
	for i, q := range e.Quizzes {
		form.Quizzes[i] = quizForm{Options: q.Options, CorrectOptions: q.CorrectOptions}
	}

	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("validate exam: %w", err)
	}
	out := &ValidationError{}
	for _, fe := range ves {
		is := Issue{Quiz: -1, Field: fieldNames[fe.StructField()], Rule: fe.Tag(), Value: fe.Param()}
		if is.Field == "" {
			is.Field = fe.Field()
		}
		if m := quizIndexR.FindStringSubmatch(fe.Namespace()); m != nil {
			is.Quiz, _ = strconv.Atoi(m[1])
		}
		out.Issues = append(out.Issues, is)
	}
	return out
}
