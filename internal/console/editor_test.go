package console

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pavelanni/examdesk/internal/editor"
	"github.com/pavelanni/examdesk/internal/model"
)

type fakeCatalog struct {
	taken  map[string]bool
	reject bool
	saved  []model.Exam
}

func (f *fakeCatalog) NameTaken(_ context.Context, name string) (bool, error) {
	return f.taken[name], nil
}

func (f *fakeCatalog) Upsert(_ context.Context, e model.Exam) error {
	if f.reject {
		return model.ErrRejected
	}
	f.saved = append(f.saved, e)
	return nil
}

type fakeExplainer struct{}

func (fakeExplainer) Explain(_ context.Context, q model.Quiz) (string, error) {
	return "because " + strings.Join(q.CorrectOptions, ", "), nil
}

func TestEditBuildsAndSavesExam(t *testing.T) {
	script := strings.Join([]string{
		"name Go Basics",
		"add",
		"q 1 What is Go?",
		"o 1 A language",
		"o 1 A snake",
		"save",
		"c 1 a",
		"explain",
		"save",
	}, "\n") + "\n"
	var out bytes.Buffer
	con := New(strings.NewReader(script), &out, "en", "plain")
	cat := &fakeCatalog{}

	if err := con.Edit(context.Background(), editor.NewDraft(""), cat, fakeExplainer{}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if len(cat.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(cat.saved))
	}
	e := cat.saved[0]
	want := model.Quiz{
		Content:        "What is Go?",
		Options:        []string{"A language", "A snake"},
		CorrectOptions: []string{"A language"},
		Explanation:    "because A language",
	}
	if e.Name != "Go Basics" || len(e.Quizzes) != 1 || e.Quizzes[0].Content != want.Content ||
		e.Quizzes[0].Explanation != want.Explanation || len(e.Quizzes[0].CorrectOptions) != 1 {
		t.Errorf("unexpected saved exam %+v", e)
	}
	text := out.String()
	for _, w := range []string{"quiz 1: at least one correct option is required", "Drafted 1 explanation.", "Exam saved."} {
		if !strings.Contains(text, w) {
			t.Errorf("expected %q in output:\n%s", w, text)
		}
	}
}

func TestEditReportsTakenNameAndRejection(t *testing.T) {
	exam := model.Exam{Name: "Go Basics", Quizzes: []model.Quiz{
		{Content: "Q", Options: []string{"A"}, CorrectOptions: []string{"A"}},
	}}

	var out bytes.Buffer
	d := editor.NewDraft("Go Basics")
	d.Prepend(exam.Quizzes)
	con := New(strings.NewReader("save\nquit\n"), &out, "en", "plain")
	err := con.Edit(context.Background(), d, &fakeCatalog{taken: map[string]bool{"Go Basics": true}}, nil)
	if !errors.Is(err, ErrQuit) {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
	if !strings.Contains(out.String(), "an exam with this name already exists") {
		t.Errorf("expected name issue, got:\n%s", out.String())
	}

	out.Reset()
	existing, err := editor.FromExam(exam)
	if err != nil {
		t.Fatalf("FromExam: %v", err)
	}
	con = New(strings.NewReader("save\n"), &out, "en", "plain")
	err = con.Edit(context.Background(), existing, &fakeCatalog{reject: true}, nil)
	if !errors.Is(err, ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
	if !strings.Contains(out.String(), "The backend rejected the submission.") {
		t.Errorf("expected rejection notice, got:\n%s", out.String())
	}
}

func TestEditImportsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizzes.json")
	data := `[{"quizContent":"Q1","chooses":["A","B"],"correctContents":["B"],"solution":"S"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out bytes.Buffer
	con := New(strings.NewReader("import "+path+"\nx 1 a\nsave\n"), &out, "en", "plain")
	cat := &fakeCatalog{}
	if err := con.Edit(context.Background(), editor.NewDraft("Imported"), cat, nil); err != nil {
		t.Fatalf("Edit: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "Imported 1 quiz.") {
		t.Errorf("expected import notice, got:\n%s", out.String())
	}
	if got := cat.saved[0].Quizzes[0].Options; len(got) != 1 || got[0] != "B" {
		t.Errorf("expected option A removed, got %v", got)
	}
}
