package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pavelanni/examdesk/internal/backend"
	"github.com/pavelanni/examdesk/internal/model"
)

// Import formats.
const (
	FormatJSON   = "json"
	FormatLegacy = "legacy"
)

// Legacy text format markers.
const (
	legacyQuizSep = "@@@#"
	legacyListSep = "##"
)

var legacyFields = []string{"quizContent=", "chooses=", "correctContents=", "solution="}

// quizListSchema describes a JSON import: an array of quizzes in the
// backend's field names.
const quizListSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["quizContent", "chooses", "correctContents"],
    "properties": {
      "quizContent": {"type": "string"},
      "chooses": {"type": "array", "items": {"type": "string"}},
      "correctContents": {"type": "array", "items": {"type": "string"}},
      "solution": {"type": "string"}
    }
  }
}`

var quizListLoader = gojsonschema.NewStringLoader(quizListSchema)

// ImportError reports a JSON import that does not match the quiz schema.
type ImportError struct {
	Problems []string
}

func (e *ImportError) Error() string {
	return "import quizzes: " + strings.Join(e.Problems, "; ")
}

// ImportJSON parses a JSON array of quizzes.
func ImportJSON(data []byte) ([]model.Quiz, error) {
	res, err := gojsonschema.Validate(quizListLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("import quizzes: %w", err)
	}
	if !res.Valid() {
		ie := &ImportError{}
		for _, re := range res.Errors() {
			ie.Problems = append(ie.Problems, re.String())
		}
		return nil, ie
	}

	var wire []backend.Quiz
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("import quizzes: %w", err)
	}
	out := make([]model.Quiz, 0, len(wire))
	for _, q := range wire {
		out = append(out, q.ToModel())
	}
	return out, nil
}

// ImportLegacy parses the legacy text format: quizzes separated by "@@@#",
// each holding quizContent=, chooses=, correctContents= and solution= with
// the value on the following lines, list items joined by "##". Quizzes
// without a solution, or missing a field, are skipped.
func ImportLegacy(text string) []model.Quiz {
	var out []model.Quiz
	for _, seg := range strings.Split(text, legacyQuizSep) {
		q, ok := parseLegacyQuiz(seg)
		if !ok || q.Explanation == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

func parseLegacyQuiz(seg string) (model.Quiz, bool) {
	idx := make([]int, len(legacyFields))
	prev := -1
	for i, f := range legacyFields {
		k := strings.Index(seg, f)
		if k <= prev {
			return model.Quiz{}, false
		}
		idx[i], prev = k, k
	}
	values := make([]string, len(legacyFields))
	for i, f := range legacyFields {
		end := len(seg)
		if i+1 < len(idx) {
			end = idx[i+1]
		}
		values[i] = trimLegacyValue(seg[idx[i]+len(f) : end])
	}
	return model.Quiz{
		Content:        values[0],
		Options:        splitLegacyList(values[1]),
		CorrectOptions: splitLegacyList(values[2]),
		Explanation:    values[3],
	}, true
}

func trimLegacyValue(s string) string {
	return strings.Trim(s, "\r\n")
}

func splitLegacyList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, legacyListSep) {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FormatLegacyText renders quizzes in the legacy text format.
func FormatLegacyText(qs []model.Quiz) string {
	var b strings.Builder
	for i, q := range qs {
		if i > 0 {
			b.WriteString(legacyQuizSep + "\r\n")
		}
		values := []string{
			q.Content,
			strings.Join(q.Options, legacyListSep),
			strings.Join(q.CorrectOptions, legacyListSep),
			q.Explanation,
		}
		for k, f := range legacyFields {
			b.WriteString(f + "\r\n" + values[k] + "\r\n")
		}
	}
	return b.String()
}

// Import parses data as JSON and falls back to the legacy format when it is
// not JSON at all. It returns the quizzes and the format used.
func Import(data []byte) ([]model.Quiz, string, error) {
	if json.Valid(data) {
		qs, err := ImportJSON(data)
		if err != nil {
			return nil, FormatJSON, err
		}
		return qs, FormatJSON, nil
	}
	qs := ImportLegacy(string(data))
	if len(qs) == 0 {
		return nil, FormatLegacy, errors.New("import quizzes: no quizzes found")
	}
	return qs, FormatLegacy, nil
}

// Import parses data and prepends the quizzes to the draft.
func (d *Draft) Import(data []byte) (int, string, error) {
	qs, format, err := Import(data)
	if err != nil {
		return 0, format, err
	}
	d.Prepend(qs)
	return len(qs), format, nil
}
