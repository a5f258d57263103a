// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrate

import (
	"fmt"
	"strings"
)

// dangerousPatterns are operations flagged in generated R code. Matches
// are advisory; flagged code is annotated, never removed.
var dangerousPatterns = []string{"system(", "unlink(", "file.remove(", "shell("}

// annotateHazards scans fenced R code blocks in an answer and appends a
// validation notes section when any block contains a deny-listed
// operation. Blocks shorter than two lines are skipped.
func annotateHazards(answer string) string {
	blocks := extractCodeBlocks(answer)

	var notes []string
	for i, block := range blocks {
		if len(strings.Split(strings.TrimSpace(block), "\n")) < 2 {
			continue
		}
		if issue := checkCodeBlock(block); issue != "" {
			notes = append(notes, fmt.Sprintf("Code block %d: %s", i+1, issue))
		}
	}

	if len(notes) == 0 {
		return answer
	}
	return answer + "\n\n**Validation Notes:**\n" + strings.Join(notes, "\n")
}

// extractCodeBlocks returns the contents of fenced code blocks whose
// fence is bare or tagged as R.
func extractCodeBlocks(text string) []string {
	var blocks []string
	lines := strings.Split(text, "\n")

	inBlock := false
	capture := false
	var current []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				if capture {
					blocks = append(blocks, strings.Join(current, "\n"))
				}
				inBlock = false
				continue
			}
			inBlock = true
			current = current[:0]
			tag := strings.ToLower(strings.TrimPrefix(trimmed, "```"))
			capture = tag == "" || tag == "r"
			continue
		}
		if inBlock {
			current = append(current, line)
		}
	}
	return blocks
}

// checkCodeBlock reports the first deny-listed operation found, if any.
func checkCodeBlock(code string) string {
	lower := strings.ToLower(code)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return "contains potentially dangerous operation: " + pattern
		}
	}
	return ""
}
