package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelanni/examdesk/internal/result"
)

var viewLabels = map[result.View]string{
	result.ViewAll:       "FilterAll",
	result.ViewCorrect:   "FilterCorrect",
	result.ViewIncorrect: "FilterIncorrect",
}

// ShowReport prints the score header and the questions of view v.
func (c *Console) ShowReport(r *result.Report, v result.View) {
	c.Println(c.paint(ansiBold, fmt.Sprintf("%s  #%d  %s", r.Score.ExamName, r.Score.ID,
		r.Score.SubmittedAt.Local().Format("2006-01-02 15:04"))))

	verdict := c.paint(ansiRed, c.T("NeedsAttention"))
	if r.Passed() {
		verdict = c.paint(ansiGreen, c.T("Passed"))
	}
	c.Println(c.Td("ScoreLine", map[string]any{
		"Score":    r.Score.ScorePercent,
		"Correct":  r.Score.CorrectCount,
		"Total":    r.Score.TotalCount,
		"Accuracy": fmt.Sprintf("%.1f", r.Accuracy()),
	}), verdict)

	set := r.Filter(v)
	c.Printf("-- %s (%d) --\n", c.T(viewLabels[v]), set.Len())
	for k, i := range set.Indices {
		mark := c.paint(ansiRed, "✗")
		if r.IsCorrect(i) {
			mark = c.paint(ansiGreen, "✓")
		}
		c.Printf("%d. %s %s\n", i+1, mark, set.Quizzes[k].Content)
		c.Printf("   %s: %s\n", c.T("YourAnswer"), c.joinOrNone(set.Selected[k]))
		c.Printf("   %s: %s\n", c.T("CorrectAnswer"), c.joinOrNone(set.Correct[k]))
		if exp := strings.TrimSpace(set.Quizzes[k].Explanation); exp != "" {
			c.Printf("   %s: %s\n", c.T("Explanation"), exp)
		}
	}
}

// Browse shows the report and lets the user switch views until they quit or
// the input ends.
func (c *Console) Browse(ctx context.Context, r *result.Report) error {
	v := result.ViewAll
	for {
		c.ShowReport(r, v)
		line, err := c.Ask(ctx, "[all/correct/incorrect/q]>")
		if err == ErrInputClosed {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "q" || line == "quit" {
			return nil
		}
		next, err := result.ParseView(line)
		if err != nil {
			c.Println(c.Td("UnknownCommand", map[string]any{"Input": line}))
			continue
		}
		v = next
	}
}

func (c *Console) joinOrNone(opts []string) string {
	if len(opts) == 0 {
		return c.T("NoAnswer")
	}
	return strings.Join(opts, ", ")
}
