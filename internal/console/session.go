package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pavelanni/examdesk/internal/model"
	"github.com/pavelanni/examdesk/internal/scoring"
	"github.com/pavelanni/examdesk/internal/session"
)

// ErrQuit is returned by Take when the user leaves without submitting.
var ErrQuit = errors.New("session abandoned")

type notice struct {
	kind session.Notice
	err  error
}

// Notify is a session.Notifier. It never blocks the session loop; excess
// notices are dropped.
func (c *Console) Notify(n session.Notice, err error) {
	c.noticeOnce.Do(c.initNotices)
	select {
	case c.notices <- notice{kind: n, err: err}:
	default:
	}
}

func (c *Console) initNotices() {
	c.notices = make(chan notice, 8)
}

// Confirm implements session.Confirmer by asking on the terminal.
func (c *Console) Confirm(ctx context.Context, p session.Prompt) (bool, error) {
	msg := c.T("SubmitIncomplete")
	if p.Complete {
		msg = c.T("SubmitComplete")
	}
	c.Println(c.paint(ansiBold, c.T("SubmitTitle")))
	c.Println(c.Td("Progress", map[string]any{"Answered": p.Answered, "Total": p.Total}))
	return c.YesNo(ctx, msg)
}

// Take drives a running machine from terminal input until the attempt is
// committed, the user quits, or ctx ends. The machine must have been created
// with session.WithNotifier(c.Notify).
func (c *Console) Take(ctx context.Context, m *session.Machine) (scoring.Result, error) {
	c.noticeOnce.Do(c.initNotices)
	a, err := m.Snapshot()
	if err != nil {
		return scoring.Result{}, err
	}
	c.Println(c.paint(ansiBold, a.ExamName), "-", m.Mode())
	c.Println(c.T("SessionHelp"))
	c.renderQuizzes(m, a)
	c.status(m)

	for {
		select {
		case n := <-c.notices:
			if n.kind != session.NoticeExpired {
				continue
			}
			c.Println(c.paint(ansiYellow, c.T("SessionExpired")))
			if res, ok := c.await(ctx, m); ok {
				return res, nil
			}
		case line, ok := <-c.lines():
			if !ok {
				return scoring.Result{}, ErrInputClosed
			}
			res, done, err := c.handle(ctx, m, a, line)
			if done {
				return res, err
			}
		case <-ctx.Done():
			return scoring.Result{}, ctx.Err()
		}
	}
}

func (c *Console) handle(ctx context.Context, m *session.Machine, a model.Attempt, line string) (scoring.Result, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		c.status(m)
		return scoring.Result{}, false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "q", "quit":
		return scoring.Result{}, true, ErrQuit
	case "p", "progress":
		c.status(m)
	case "l", "list":
		c.renderQuizzes(m, a)
	case "h", "help":
		c.Println(c.T("SessionHelp"))
	case "s", "submit":
		err := m.Submit(ctx, c)
		switch {
		case errors.Is(err, session.ErrSubmitDeclined):
			c.Println(c.T("SubmitDeclined"))
		case err == nil, errors.Is(err, session.ErrNotActive):
			if res, ok := c.await(ctx, m); ok {
				return res, true, nil
			}
		case errors.Is(err, ErrInputClosed), errors.Is(err, context.Canceled):
			return scoring.Result{}, true, err
		default:
			c.Println(c.paint(ansiRed, err.Error()))
		}
	case "retry":
		if err := m.Retry(ctx); err != nil {
			c.Println(c.paint(ansiRed, err.Error()))
			break
		}
		if res, ok := c.await(ctx, m); ok {
			return res, true, nil
		}
	case "r", "reveal":
		c.reveal(m, a, fields)
	default:
		c.toggle(m, a, line, fields)
	}
	return scoring.Result{}, false, nil
}

// await blocks on the commit and reports whether it completed.
func (c *Console) await(ctx context.Context, m *session.Machine) (scoring.Result, bool) {
	res, err := m.Wait(ctx)
	if err != nil {
		c.Println(c.paint(ansiRed, c.T("CommitFailed")))
		c.Println(c.paint(ansiRed, err.Error()))
		return scoring.Result{}, false
	}
	c.Println(c.paint(ansiGreen, c.T("CommitSucceeded")))
	return res, true
}

func (c *Console) reveal(m *session.Machine, a model.Attempt, fields []string) {
	if m.Mode() != model.ModePractice {
		c.Println(c.T("RevealUnavailable"))
		return
	}
	if len(fields) < 2 {
		c.Println(c.Td("UnknownCommand", map[string]any{"Input": strings.Join(fields, " ")}))
		return
	}
	i, err := quizNumber(fields[1], len(a.Quizzes))
	if err != nil {
		c.Println(c.paint(ansiRed, err.Error()))
		return
	}
	if err := m.Reveal(i); err != nil {
		c.Println(c.paint(ansiRed, err.Error()))
		return
	}
	c.Println(c.Td("Revealed", map[string]any{"Options": strings.Join(a.Quizzes[i].CorrectOptions, ", ")}))
}

func (c *Console) toggle(m *session.Machine, a model.Attempt, line string, fields []string) {
	unknown := func() { c.Println(c.Td("UnknownCommand", map[string]any{"Input": line})) }
	if len(fields) < 2 {
		unknown()
		return
	}
	i, err := quizNumber(fields[0], len(a.Quizzes))
	if err != nil {
		unknown()
		return
	}
	opt, ok := resolveOption(a.Quizzes[i], strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
	if !ok {
		unknown()
		return
	}
	if err := m.ToggleAnswer(i, opt); err != nil {
		c.Println(c.paint(ansiRed, err.Error()))
		return
	}
	snap, err := m.Snapshot()
	if err != nil {
		c.Println(c.paint(ansiRed, err.Error()))
		return
	}
	c.renderQuiz(i, snap.Quizzes[i], snap.Answers[i], m.Revealed(i))
	c.status(m)
}

// quizNumber parses a 1-based quiz number into an index.
func quizNumber(s string, n int) (int, error) {
	k, err := strconv.Atoi(s)
	if err != nil || k < 1 || k > n {
		return 0, fmt.Errorf("%w: %s", session.ErrQuizIndex, s)
	}
	return k - 1, nil
}

// resolveOption accepts an option letter (a, b, ...) or the option text.
func resolveOption(q model.Quiz, in string) (string, bool) {
	if q.HasOption(in) {
		return in, true
	}
	if len(in) == 1 {
		k := int(strings.ToLower(in)[0] - 'a')
		if k >= 0 && k < len(q.Options) {
			return q.Options[k], true
		}
	}
	return "", false
}

func optionLetter(k int) string {
	return string(rune('a' + k))
}

func (c *Console) renderQuizzes(m *session.Machine, a model.Attempt) {
	snap, err := m.Snapshot()
	if err != nil {
		snap = a
	}
	for i, q := range snap.Quizzes {
		c.renderQuiz(i, q, snap.Answers[i], m.Revealed(i))
	}
}

func (c *Console) renderQuiz(i int, q model.Quiz, ans model.Answer, revealed bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n", i+1, q.Content)
	for k, opt := range q.Options {
		mark := "[ ]"
		if ans.Has(opt) {
			mark = "[x]"
		}
		line := fmt.Sprintf("   %s %s) %s", mark, optionLetter(k), opt)
		if revealed && containsString(q.CorrectOptions, opt) {
			line = c.paint(ansiGreen, line+" *")
		}
		b.WriteString(line + "\n")
	}
	c.Printf("%s", b.String())
}

func (c *Console) status(m *session.Machine) {
	p := m.Progress()
	line := c.Td("Progress", map[string]any{"Answered": p.Answered, "Total": p.Total})
	if d, ts := m.Remaining(); ts == session.TimerRunning {
		line += "  " + c.Td("TimeLeft", map[string]any{"Time": formatClock(d)})
	}
	c.Println(line)
}

// formatClock renders d as mm:ss.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
