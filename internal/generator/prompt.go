package generator

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"docqa/internal/domain"
)

// DefaultTemplate restricts the model to the supplied context and names the exact
// reply to use when the context does not cover the question.
const DefaultTemplate = `Answer the question below using only the document excerpts provided.
If the excerpts contain no relevant information, reply exactly: "{{.fallback}}"

Document excerpts:
{{.context}}

Question: {{.question}}
Answer:`

// Prompt renders the question-answering prompt.
type Prompt struct {
	template prompts.PromptTemplate
	fallback string
}

// NewPrompt parses tmpl (Go template syntax over context, question and fallback).
// An empty tmpl selects DefaultTemplate.
func NewPrompt(tmpl, fallback string) (*Prompt, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultTemplate
	}
	p := &Prompt{
		template: prompts.NewPromptTemplate(tmpl, []string{"context", "question", "fallback"}),
		fallback: fallback,
	}
	if _, err := p.Format("", nil); err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}
	return p, nil
}

// Format substitutes the concatenated chunk texts and the question into the template.
func (p *Prompt) Format(question string, chunks []domain.Chunk) (string, error) {
	return p.template.Format(map[string]any{
		"context":  JoinContext(chunks),
		"question": question,
		"fallback": p.fallback,
	})
}

// JoinContext concatenates chunk texts in retrieval order, separated by a blank line.
func JoinContext(chunks []domain.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, strings.TrimSpace(c.Text))
	}
	return strings.Join(parts, "\n\n")
}
