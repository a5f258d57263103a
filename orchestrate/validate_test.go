package orchestrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotateHazardsCleanAnswer(t *testing.T) {
	answer := "Use lm() to fit the model:\n```r\nfit <- lm(y ~ x, data = df)\nsummary(fit)\n```\n"
	assert.Equal(t, answer, annotateHazards(answer))
}

func TestAnnotateHazardsFlagsDangerousCall(t *testing.T) {
	answer := "Try this:\n```r\nfiles <- list.files()\nunlink(files)\n```"
	got := annotateHazards(answer)
	assert.Contains(t, got, "**Validation Notes:**")
	assert.Contains(t, got, "unlink(")
	// The original code block is kept intact.
	assert.Contains(t, got, "unlink(files)")
}

func TestAnnotateHazardsSkipsShortBlocks(t *testing.T) {
	answer := "One-liner:\n```r\nsystem(\"ls\")\n```"
	assert.Equal(t, answer, annotateHazards(answer))
}

func TestAnnotateHazardsIgnoresOtherLanguages(t *testing.T) {
	answer := "Shell example:\n```bash\nrm -rf /tmp/x\nsystem(\"x\")\n```"
	assert.Equal(t, answer, annotateHazards(answer))
}

func TestAnnotateHazardsNumbersBlocks(t *testing.T) {
	answer := "First:\n```r\nx <- 1\ny <- 2\n```\nSecond:\n```r\nsystem(\"rm\")\nmore <- TRUE\n```"
	got := annotateHazards(answer)
	assert.Contains(t, got, "Code block 2: contains potentially dangerous operation: system(")
}

func TestExtractCodeBlocks(t *testing.T) {
	text := "intro\n```r\na <- 1\n```\nmiddle\n```\nb <- 2\n```\n```python\nc = 3\n```"
	blocks := extractCodeBlocks(text)
	assert.Equal(t, []string{"a <- 1", "b <- 2"}, blocks)
}
