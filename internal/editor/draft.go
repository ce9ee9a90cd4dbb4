// Package editor builds and edits exams before they are upserted.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jinzhu/copier"

	"github.com/pavelanni/examdesk/internal/model"
)

var (
	// ErrQuizIndex is returned for a quiz index outside the draft.
	ErrQuizIndex = errors.New("quiz index out of range")
	// ErrUnknownOption is returned when marking an option the quiz does not have.
	ErrUnknownOption = errors.New("option not in quiz")
)

// Catalog is where finished drafts go. *catalog.Client implements it.
type Catalog interface {
	NameTaken(ctx context.Context, name string) (bool, error)
	Upsert(ctx context.Context, e model.Exam) error
}

// Explainer writes an explanation for a quiz.
type Explainer interface {
	Explain(ctx context.Context, q model.Quiz) (string, error)
}

// Draft is a mutable exam being authored.
type Draft struct {
	exam  model.Exam
	isNew bool
}

// NewDraft starts an empty exam.
func NewDraft(name string) *Draft {
	return &Draft{exam: model.Exam{Name: name, Quizzes: []model.Quiz{}}, isNew: true}
}

// FromExam starts editing an existing exam. The draft does not share memory
// with e.
func FromExam(e model.Exam) (*Draft, error) {
	d := &Draft{}
	if err := copier.CopyWithOption(&d.exam, &e, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy exam: %w", err)
	}
	if d.exam.Quizzes == nil {
		d.exam.Quizzes = []model.Quiz{}
	}
	return d, nil
}

// Exam returns a copy of the draft's current state.
func (d *Draft) Exam() model.Exam {
	out := model.Exam{Name: d.exam.Name, Quizzes: make([]model.Quiz, len(d.exam.Quizzes))}
	for i, q := range d.exam.Quizzes {
		out.Quizzes[i] = model.Quiz{
			Content:        q.Content,
			Options:        slices.Clone(q.Options),
			CorrectOptions: slices.Clone(q.CorrectOptions),
			Explanation:    q.Explanation,
		}
	}
	return out
}

// Len returns the number of quizzes.
func (d *Draft) Len() int {
	return len(d.exam.Quizzes)
}

// SetName renames the exam.
func (d *Draft) SetName(name string) {
	d.exam.Name = name
}

// AddQuiz inserts a blank quiz at the front.
func (d *Draft) AddQuiz() {
	d.Prepend([]model.Quiz{{Options: []string{}, CorrectOptions: []string{}}})
}

// Prepend inserts quizzes at the front, keeping their order.
func (d *Draft) Prepend(qs []model.Quiz) {
	d.exam.Quizzes = append(slices.Clone(qs), d.exam.Quizzes...)
}

// RemoveQuiz deletes quiz i.
func (d *Draft) RemoveQuiz(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.exam.Quizzes = slices.Delete(d.exam.Quizzes, i, i+1)
	return nil
}

// SetContent replaces quiz i's question text.
func (d *Draft) SetContent(i int, content string) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.exam.Quizzes[i].Content = content
	return nil
}

// SetExplanation replaces quiz i's explanation.
func (d *Draft) SetExplanation(i int, text string) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.exam.Quizzes[i].Explanation = text
	return nil
}

// AddOption appends a trimmed option to quiz i. Blank and duplicate options
// are ignored and reported as not added.
func (d *Draft) AddOption(i int, opt string) (bool, error) {
	if err := d.check(i); err != nil {
		return false, err
	}
	opt = strings.TrimSpace(opt)
	q := &d.exam.Quizzes[i]
	if opt == "" || q.HasOption(opt) {
		return false, nil
	}
	q.Options = append(q.Options, opt)
	return true, nil
}

// RemoveOption deletes an option from quiz i and from its correct options.
func (d *Draft) RemoveOption(i int, opt string) error {
	if err := d.check(i); err != nil {
		return err
	}
	q := &d.exam.Quizzes[i]
	q.Options = slices.DeleteFunc(q.Options, func(o string) bool { return o == opt })
	q.CorrectOptions = slices.DeleteFunc(q.CorrectOptions, func(o string) bool { return o == opt })
	return nil
}

// ToggleCorrect flips whether opt is a correct option of quiz i.
func (d *Draft) ToggleCorrect(i int, opt string) error {
	if err := d.check(i); err != nil {
		return err
	}
	q := &d.exam.Quizzes[i]
	if !q.HasOption(opt) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, opt)
	}
	if k := slices.Index(q.CorrectOptions, opt); k >= 0 {
		q.CorrectOptions = slices.Delete(q.CorrectOptions, k, k+1)
		return nil
	}
	q.CorrectOptions = append(q.CorrectOptions, opt)
	return nil
}

// Submit validates the draft and upserts it. New exams must not reuse an
// existing name.
func (d *Draft) Submit(ctx context.Context, c Catalog) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.isNew {
		taken, err := c.NameTaken(ctx, d.exam.Name)
		if err != nil {
			return fmt.Errorf("submit exam: %w", err)
		}
		if taken {
			return &ValidationError{Issues: []Issue{{Quiz: -1, Field: "name", Rule: "unique"}}}
		}
	}
	if err := c.Upsert(ctx, d.Exam()); err != nil {
		return fmt.Errorf("submit exam: %w", err)
	}
	d.isNew = false
	slog.Info("exam saved", "exam", d.exam.Name, "quizzes", len(d.exam.Quizzes))
	return nil
}

// DraftExplanations asks e for an explanation of every quiz that has none and
// returns how many were filled. It stops at the first error.
func (d *Draft) DraftExplanations(ctx context.Context, e Explainer) (int, error) {
	n := 0
	for i := range d.exam.Quizzes {
		q := &d.exam.Quizzes[i]
		if strings.TrimSpace(q.Explanation) != "" {
			continue
		}
		text, err := e.Explain(ctx, *q)
		if err != nil {
			return n, fmt.Errorf("explain quiz %d: %w", i, err)
		}
		q.Explanation = text
		n++
	}
	return n, nil
}

func (d *Draft) check(i int) error {
	if i < 0 || i >= len(d.exam.Quizzes) {
		return fmt.Errorf("%w: %d", ErrQuizIndex, i)
	}
	return nil
}
