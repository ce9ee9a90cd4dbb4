package console

import (
	"fmt"
	"text/tabwriter"

	"github.com/pavelanni/examdesk/internal/model"
)

// ShowHistory prints score summaries as a table.
func (c *Console) ShowHistory(scores []model.ScoreSummary) {
	if len(scores) == 0 {
		c.Println(c.T("NothingFound"))
		return
	}
	c.mu.Lock()
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEXAM\tSCORE\tCORRECT\tSUBMITTED")
	for _, s := range scores {
		submitted := "-"
		if !s.SubmittedAt.IsZero() {
			submitted = s.SubmittedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%s\n", s.ID, s.ExamName, s.ScorePercent, s.CorrectCount, s.TotalCount, submitted)
	}
	tw.Flush()
	c.mu.Unlock()
	c.Println(c.Tp("ResultsFound", len(scores)))
}

// ShowExams prints exam names, one per line.
func (c *Console) ShowExams(names []string) {
	if len(names) == 0 {
		c.Println(c.T("NothingFound"))
		return
	}
	for _, n := range names {
		c.Println(" ", n)
	}
	c.Println(c.Tp("ExamsFound", len(names)))
}

// ShowExam prints an exam's quizzes with their correct options marked.
func (c *Console) ShowExam(e model.Exam) {
	c.Println(c.paint(ansiBold, e.Name))
	c.Println(c.Tp("QuestionsAvailable", len(e.Quizzes)))
	for i, q := range e.Quizzes {
		c.renderQuiz(i, q, model.Answer{}, true)
		if q.Explanation != "" {
			c.Printf("   %s: %s\n", c.T("Explanation"), q.Explanation)
		}
	}
}
