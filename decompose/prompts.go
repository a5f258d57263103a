package decompose

import "fmt"

const decompositionPromptTemplate = `You are a query analysis expert for R programming assistance. Break down this user question into specific sub-questions that need to be answered to provide a complete response.

User Question: %q

For each sub-question, provide:
1. The specific question to research
2. The type of information needed (package, function, concept, example, etc.)
3. The priority (1=critical, 2=important, 3=helpful)

Format your response as a JSON array of objects with keys: "question", "type", "priority"

Example:
[
  {"question": "What packages are available for linear regression?", "type": "package", "priority": 1},
  {"question": "How to use lm() function?", "type": "function", "priority": 1},
  {"question": "How to check linear regression assumptions?", "type": "concept", "priority": 2}
]

Sub-questions:
`

func decompositionPrompt(query string) string {
	return fmt.Sprintf(decompositionPromptTemplate, query)
}
