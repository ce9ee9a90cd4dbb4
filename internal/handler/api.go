package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/pavelanni/examdesk/internal/backend"
	"github.com/pavelanni/examdesk/internal/editor"
	"github.com/pavelanni/examdesk/internal/model"
	"github.com/pavelanni/examdesk/internal/result"
)

func (h *Handler) handleExamList(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListExamNames()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, names)
}

func (h *Handler) handleExamListByKeyword(w http.ResponseWriter, r *http.Request) {
	keyword, err := readText(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	names, err := h.store.SearchExamNames(keyword)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, names)
}

func (h *Handler) handleCheckExamName(w http.ResponseWriter, r *http.Request) {
	name, err := readText(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	taken, err := h.store.ExamExists(name)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, taken)
}

func (h *Handler) handleExamByName(w http.ResponseWriter, r *http.Request) {
	name, err := readText(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	e, err := h.store.GetExam(name)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if e == nil {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, backend.ExamFromModel(*e))
}

func (h *Handler) handleAddExam(w http.ResponseWriter, r *http.Request) {
	var in backend.Exam
	if err := readJSON(r, &in); err != nil {
		h.badRequest(w, r, err)
		return
	}
	e := in.ToModel()
	if err := editor.ValidateExam(e); err != nil {
		slog.Info("exam rejected", "name", e.Name, "error", err)
		writeJSON(w, false)
		return
	}
	if err := h.store.UpsertExam(e); err != nil {
		h.internalError(w, r, err)
		return
	}
	slog.Info("exam saved", "name", e.Name, "quizzes", len(e.Quizzes))
	writeJSON(w, true)
}

func (h *Handler) handleRemoveExam(w http.ResponseWriter, r *http.Request) {
	name, err := readText(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	ok, err := h.store.DeleteExam(name)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, ok)
}

func (h *Handler) handleExamModeQuizzes(w http.ResponseWriter, r *http.Request) {
	var p backend.ModeParam
	if err := readJSON(r, &p); err != nil {
		h.badRequest(w, r, err)
		return
	}
	e, err := h.store.GetExam(p.Name)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if e == nil {
		writeJSON(w, nil)
		return
	}

	quizzes := slices.Clone(e.Quizzes)
	if h.config.Shuffle {
		h.shuffle(len(quizzes), func(i, j int) {
			quizzes[i], quizzes[j] = quizzes[j], quizzes[i]
		})
	}
	if p.QuizzesNum > 0 && p.QuizzesNum < len(quizzes) {
		quizzes = quizzes[:p.QuizzesNum]
	}

	a := model.Attempt{
		ExamName: e.Name,
		Quizzes:  quizzes,
		Answers:  make([]model.Answer, len(quizzes)),
	}
	slog.Debug("session quizzes selected", "exam", e.Name, "requested", p.QuizzesNum, "selected", len(quizzes))
	writeJSON(w, backend.RecordFromModel(a))
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	var in backend.Record
	if err := readJSON(r, &in); err != nil {
		h.badRequest(w, r, err)
		return
	}
	a := in.ToModel()
	if err := a.CheckAligned(); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if a.ExamName == "" {
		h.badRequest(w, r, errors.New("exam name is required"))
		return
	}
	a.SubmittedAt = h.now().UTC()

	sc := scoreAttempt(a)
	id, err := h.store.InsertRecord(a, sc)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	a.ID = id
	slog.Info("attempt committed", "id", id, "exam", a.ExamName, "score", sc.ScorePercent)
	writeJSON(w, backend.RecordFromModel(a))
}

// scoreAttempt counts fully correct answers. The percentage keeps two decimals.
func scoreAttempt(a model.Attempt) model.ScoreSummary {
	sc := model.ScoreSummary{ExamName: a.ExamName, TotalCount: len(a.Quizzes), ScorePercent: "0.00"}
	for i, q := range a.Quizzes {
		if result.IsCorrect(q, a.Answers[i]) {
			sc.CorrectCount++
		}
	}
	if sc.TotalCount > 0 {
		sc.ScorePercent = fmt.Sprintf("%.2f", float64(sc.CorrectCount)*100/float64(sc.TotalCount))
	}
	return sc
}

func (h *Handler) handleScoreByID(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := readJSON(r, &id); err != nil {
		h.badRequest(w, r, err)
		return
	}
	sc, err := h.store.GetScore(id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if sc == nil {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, backend.ScoreFromModel(*sc))
}

func (h *Handler) handleScoreByKeyword(w http.ResponseWriter, r *http.Request) {
	keyword, err := readText(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if keyword == backend.ListAllScoresKeyword {
		keyword = ""
	}
	scores, err := h.store.SearchScores(keyword)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	out := make([]backend.RecordScore, 0, len(scores))
	for _, sc := range scores {
		out = append(out, backend.ScoreFromModel(sc))
	}
	writeJSON(w, out)
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := readJSON(r, &id); err != nil {
		h.badRequest(w, r, err)
		return
	}
	ok, err := h.store.DeleteRecord(id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, ok)
}

func (h *Handler) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := readJSON(r, &id); err != nil {
		h.badRequest(w, r, err)
		return
	}
	a, err := h.store.GetRecord(id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if a == nil {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, backend.RecordFromModel(*a))
}
