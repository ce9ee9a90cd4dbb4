package console

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/pavelanni/examdesk/internal/editor"
	"github.com/pavelanni/examdesk/internal/model"
)

const editorHelp = `Commands:
  show                  print the draft
  name <text>           rename the exam
  add                   insert an empty quiz at the top
  rm <n>                remove quiz n
  q <n> <text>          set quiz n's question
  o <n> <text>          add an option to quiz n
  x <n> <option>        remove an option (letter or text)
  c <n> <option>        toggle an option as correct
  e <n> <text>          set quiz n's explanation
  import <file>         prepend quizzes from a JSON or legacy file
  explain               draft missing explanations
  save                  validate and save the exam
  quit                  leave without saving`

// Edit runs an interactive editing loop over d. ex may be nil, which
// disables the explain command. It returns nil once the draft is saved.
func (c *Console) Edit(ctx context.Context, d *editor.Draft, cat editor.Catalog, ex editor.Explainer) error {
	c.Println(editorHelp)
	c.ShowExam(d.Exam())
	for {
		line, err := c.Ask(ctx, "edit>")
		if err != nil {
			return err
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(cmd) {
		case "":
		case "help", "h":
			c.Println(editorHelp)
		case "show", "l":
			c.ShowExam(d.Exam())
		case "name":
			d.SetName(rest)
		case "add":
			d.AddQuiz()
			c.renderQuiz(0, d.Exam().Quizzes[0], model.Answer{}, true)
		case "rm":
			c.report(c.withQuiz(d, rest, false, func(i int, _ string) error { return d.RemoveQuiz(i) }))
		case "q":
			c.report(c.withQuiz(d, rest, true, d.SetContent))
		case "e":
			c.report(c.withQuiz(d, rest, true, d.SetExplanation))
		case "o":
			c.report(c.withQuiz(d, rest, true, func(i int, opt string) error {
				_, err := d.AddOption(i, opt)
				return err
			}))
		case "x":
			c.report(c.withQuiz(d, rest, true, func(i int, opt string) error {
				return d.RemoveOption(i, c.optionArg(d, i, opt))
			}))
		case "c":
			c.report(c.withQuiz(d, rest, true, func(i int, opt string) error {
				return d.ToggleCorrect(i, c.optionArg(d, i, opt))
			}))
		case "import":
			data, err := os.ReadFile(rest)
			if err != nil {
				c.report(err)
				continue
			}
			n, _, err := d.Import(data)
			if err != nil {
				c.report(err)
				continue
			}
			c.Println(c.Tp("QuizzesImported", n))
		case "explain":
			if ex == nil {
				c.Println(c.Td("UnknownCommand", map[string]any{"Input": line}))
				continue
			}
			n, err := d.DraftExplanations(ctx, ex)
			c.Println(c.Tp("ExplanationsDrafted", n))
			c.report(err)
		case "save":
			err := d.Submit(ctx, cat)
			if err == nil {
				c.Println(c.paint(ansiGreen, c.T("ExamSaved")))
				return nil
			}
			c.reportSave(err)
		case "quit":
			return ErrQuit
		default:
			c.Println(c.Td("UnknownCommand", map[string]any{"Input": line}))
		}
	}
}

// withQuiz parses "<n> [text]" and calls fn with the quiz index.
func (c *Console) withQuiz(d *editor.Draft, args string, needText bool, fn func(i int, text string) error) error {
	num, text, _ := strings.Cut(args, " ")
	i, err := quizNumber(num, d.Len())
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if needText && text == "" {
		return errors.New("missing text")
	}
	return fn(i, text)
}

// optionArg maps an option letter to the option text when it resolves.
func (c *Console) optionArg(d *editor.Draft, i int, in string) string {
	if opt, ok := resolveOption(d.Exam().Quizzes[i], in); ok {
		return opt
	}
	return in
}

func (c *Console) report(err error) {
	if err != nil {
		c.Println(c.paint(ansiRed, err.Error()))
	}
}

func (c *Console) reportSave(err error) {
	var ve *editor.ValidationError
	switch {
	case errors.As(err, &ve):
		for _, is := range ve.Issues {
			c.Println(c.paint(ansiRed, "- "+is.String()))
		}
	case errors.Is(err, model.ErrRejected):
		c.Println(c.paint(ansiRed, c.T("ExamRejected")))
	default:
		c.report(err)
	}
}
