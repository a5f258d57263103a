package orchestrate

import (
	"fmt"
	"strings"

	"github.com/poiesic/retrievit/core"
)

const synthesisPromptTemplate = `You are an expert R programming assistant. Based on the retrieved documentation, create a comprehensive, step-by-step workflow to answer the user's question.

Original Question: %q

Sub-questions analyzed:
%s

Retrieved Information:
%s

Instructions:
1. Identify multiple potential solutions (e.g., base R vs. tidyverse approaches)
2. Sequence the necessary packages and functions in logical order
3. Provide clear explanations for why each step is required
4. Include working code examples with expected outputs
5. Mention any important assumptions or prerequisites
6. Structure your response as a complete, actionable workflow

Your response should be practical, accurate, and include executable R code.
`

func synthesisPrompt(query string, subQuestions []core.SubQuestion, contents []string) string {
	return fmt.Sprintf(synthesisPromptTemplate, query,
		formatSubQuestions(subQuestions), strings.Join(contents, "\n"))
}

func formatSubQuestions(subQuestions []core.SubQuestion) string {
	lines := make([]string, len(subQuestions))
	for i, sq := range subQuestions {
		lines[i] = fmt.Sprintf("%d. %s (type: %s, priority: %d)", i+1, sq.Question, sq.Type, sq.Priority)
	}
	return strings.Join(lines, "\n")
}
