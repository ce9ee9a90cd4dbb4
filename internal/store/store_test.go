package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/pavelanni/examdesk/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testExam(name string) model.Exam {
	return model.Exam{
		Name: name,
		Quizzes: []model.Quiz{
			{Content: "Q1", Options: []string{"A", "B"}, CorrectOptions: []string{"A"}, Explanation: "because"},
			{Content: "Q2", Options: []string{"C", "D", "E"}, CorrectOptions: []string{"C", "E"}},
		},
	}
}

func TestExamCRUD(t *testing.T) {
	s := newTestStore(t)

	// Empty DB returns an empty, non-nil list.
	names, err := s.ListExamNames()
	if err != nil {
		t.Fatalf("ListExamNames: %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Fatalf("expected empty list, got %v", names)
	}

	e, err := s.GetExam("missing")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if e != nil {
		t.Fatalf("expected nil for missing exam, got %+v", e)
	}

	if err := s.UpsertExam(testExam("Go Basics")); err != nil {
		t.Fatalf("UpsertExam: %v", err)
	}
	got, err := s.GetExam("Go Basics")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if got == nil || !reflect.DeepEqual(*got, testExam("Go Basics")) {
		t.Fatalf("expected stored exam back, got %+v", got)
	}

	ok, err := s.ExamExists("Go Basics")
	if err != nil || !ok {
		t.Errorf("expected exam to exist, got %v, %v", ok, err)
	}
	ok, _ = s.ExamExists("go basics")
	if ok {
		t.Error("expected exact name match")
	}

	// Replace quizzes.
	updated := testExam("Go Basics")
	updated.Quizzes = updated.Quizzes[1:]
	if err := s.UpsertExam(updated); err != nil {
		t.Fatalf("UpsertExam update: %v", err)
	}
	got, _ = s.GetExam("Go Basics")
	if len(got.Quizzes) != 1 || got.Quizzes[0].Content != "Q2" {
		t.Errorf("expected quizzes replaced, got %+v", got.Quizzes)
	}
	if n, _ := s.ExamCount(); n != 1 {
		t.Errorf("expected 1 exam, got %d", n)
	}

	deleted, err := s.DeleteExam("Go Basics")
	if err != nil || !deleted {
		t.Fatalf("DeleteExam: %v, %v", deleted, err)
	}
	deleted, _ = s.DeleteExam("Go Basics")
	if deleted {
		t.Error("expected second delete to report false")
	}
}

func TestUpsertExamRequiresName(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertExam(model.Exam{Name: "  "}); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestSearchExamNames(t *testing.T) {
	s := newTestStore(t)
	for _, n := range []string{"Go Basics", "Advanced Go", "Rust 100%", "Python"} {
		if err := s.UpsertExam(testExam(n)); err != nil {
			t.Fatalf("UpsertExam: %v", err)
		}
	}

	tests := []struct {
		keyword string
		want    []string
	}{
		{"go", []string{"Go Basics", "Advanced Go"}},
		{"%", []string{"Rust 100%"}},
		{"", []string{"Go Basics", "Advanced Go", "Rust 100%", "Python"}},
		{"java", []string{}},
	}
	for _, tt := range tests {
		got, err := s.SearchExamNames(tt.keyword)
		if err != nil {
			t.Fatalf("SearchExamNames(%q): %v", tt.keyword, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SearchExamNames(%q) = %v, want %v", tt.keyword, got, tt.want)
		}
	}
}

func TestRecordLifecycle(t *testing.T) {
	s := newTestStore(t)
	e := testExam("Go Basics")
	submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := model.Attempt{
		ExamName:    e.Name,
		Quizzes:     e.Quizzes,
		Answers:     []model.Answer{{Selected: []string{"A"}}, {Selected: []string{}}},
		SubmittedAt: submitted,
	}
	id, err := s.InsertRecord(a, model.ScoreSummary{CorrectCount: 1, TotalCount: 2, ScorePercent: "50.00"})
	if err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero record id")
	}

	got, err := s.GetRecord(id)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got == nil || got.ID != id || !reflect.DeepEqual(got.Answers, a.Answers) || !reflect.DeepEqual(got.Quizzes, a.Quizzes) {
		t.Fatalf("unexpected record %+v", got)
	}
	if !got.SubmittedAt.Equal(submitted) {
		t.Errorf("expected submitted_at %v, got %v", submitted, got.SubmittedAt)
	}

	sc, err := s.GetScore(id)
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if sc == nil || sc.CorrectCount != 1 || sc.TotalCount != 2 || sc.ScorePercent != "50.00" || sc.ExamName != "Go Basics" {
		t.Errorf("unexpected score %+v", sc)
	}

	// Deleting the exam keeps the record's snapshot.
	if _, err := s.DeleteExam(e.Name); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}
	if got, _ := s.GetRecord(id); got == nil {
		t.Error("expected record to survive exam deletion")
	}

	deleted, err := s.DeleteRecord(id)
	if err != nil || !deleted {
		t.Fatalf("DeleteRecord: %v, %v", deleted, err)
	}
	if got, _ := s.GetRecord(id); got != nil {
		t.Error("expected nil after delete")
	}
	if sc, _ := s.GetScore(id); sc != nil {
		t.Error("expected nil score after delete")
	}
}

func TestInsertRecordRejectsMisaligned(t *testing.T) {
	s := newTestStore(t)
	a := model.Attempt{ExamName: "x", Quizzes: testExam("x").Quizzes, Answers: []model.Answer{{}}}
	if _, err := s.InsertRecord(a, model.ScoreSummary{}); err == nil {
		t.Error("expected misaligned attempt to be refused")
	}
}

func TestSearchScores(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Go Basics", "Python", "Advanced Go"} {
		e := testExam(name)
		a := model.Attempt{
			ExamName:    name,
			Quizzes:     e.Quizzes,
			Answers:     make([]model.Answer, len(e.Quizzes)),
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if _, err := s.InsertRecord(a, model.ScoreSummary{TotalCount: 2, ScorePercent: "0.00"}); err != nil {
			t.Fatalf("InsertRecord: %v", err)
		}
	}

	all, err := s.SearchScores("")
	if err != nil {
		t.Fatalf("SearchScores: %v", err)
	}
	if len(all) != 3 || all[0].ExamName != "Advanced Go" || all[2].ExamName != "Go Basics" {
		t.Errorf("expected newest first, got %+v", all)
	}

	goOnly, _ := s.SearchScores("GO")
	if len(goOnly) != 2 {
		t.Errorf("expected 2 Go records, got %d", len(goOnly))
	}
	none, _ := s.SearchScores("java")
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil list, got %v", none)
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	// Missing file returns empty string.
	hash, err := s.GetImportedFileHash("/some/path.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/path.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	if err := s.SetImportedFileHash("/some/path.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/path.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	st, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if st != model.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", st)
	}

	if err := st.Set(model.SettingLanguage, "zh-TW"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	st.APIURL = "http://exams.local/api"
	if err := s.SetSettings(st); err != nil {
		t.Fatalf("SetSettings: %v", err)
	}
	got, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got != st {
		t.Errorf("expected %+v, got %+v", st, got)
	}

	// A corrupt stored value is reported.
	if err := s.SetMetadata(model.SettingTheme, "neon"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if _, err := s.GetSettings(); err == nil {
		t.Error("expected error for invalid stored theme")
	}
}
