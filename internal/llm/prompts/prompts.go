package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/examdesk/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var quizContentRegex = regexp.MustCompile(`(?i)</?\s*quiz-content\b[^>]*>`)

// maxContentRunes bounds the quiz text sent to the model.
const maxContentRunes = 10000

// Variant selects an explanation prompt.
type Variant string

const (
	// VariantBrief asks for a two or three sentence explanation.
	VariantBrief Variant = "brief"
	// VariantDetailed asks for a per-option explanation.
	VariantDetailed Variant = "detailed"
)

var validVariants = map[Variant]bool{
	VariantBrief:    true,
	VariantDetailed: true,
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Variant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[Variant(v)]
}

// ExplainData holds template data for explanation prompts.
type ExplainData struct {
	Content string
	Options []string
	Correct []string
}

func load() error {
	loadOnce.Do(func() {
		templates = make(map[Variant]*template.Template)
		for v := range validVariants {
			name := "templates/explain_" + string(v) + ".txt"
			content, err := templateFS.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", name, err)
				return
			}
			tmpl, err := template.New(string(v)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			templates[v] = tmpl
		}
	})
	return loadErr
}

// BuildExplainPrompt renders the explanation prompt for q.
func BuildExplainPrompt(variant Variant, q model.Quiz) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	tmpl, ok := templates[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}
	if len(q.CorrectOptions) == 0 {
		return "", errors.New("quiz has no correct options")
	}

	data := ExplainData{
		Content: sanitizeContent(q.Content),
		Options: q.Options,
		Correct: q.CorrectOptions,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeContent(content string) string {
	content = quizContentRegex.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)
	if content == "" {
		return "[No question text]"
	}
	if utf8.RuneCountInString(content) > maxContentRunes {
		runes := []rune(content)
		content = string(runes[:maxContentRunes]) + "\n\n[Question truncated due to length]"
	}
	return content
}
