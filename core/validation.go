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


package core

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//
// NOT validated:
//   - ID (an empty ID is valid; the store derives one from content)
//   - Meta (all metadata fields are optional)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if strings.TrimSpace(doc.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	return nil
}

// ValidateSubQuestion validates a SubQuestion according to domain rules.
//
// Validation rules:
//   - Question must not be empty
//   - Priority must be in the 1..3 range
func ValidateSubQuestion(sq *SubQuestion) error {
	if sq == nil {
		return fmt.Errorf("%w: sub-question is nil", ErrInvalidSubQuestion)
	}

	if strings.TrimSpace(sq.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSubQuestion, ErrEmptyQuestion)
	}

	if sq.Priority < PriorityCritical || sq.Priority > PriorityHelpful {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidSubQuestion, ErrInvalidPriority, sq.Priority)
	}

	return nil
}
