package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// IDFromContent generates a deterministic document ID from text content
// using BLAKE2b hashing. Identical content always produces the same ID,
// so re-ingesting an unchanged document replaces rather than duplicates it.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Document is one indexed unit of reference material.
// Documents are immutable once added; a later add with the same ID is a
// full replace of the earlier record.
type Document struct {
	ID      string
	Content string
	Meta    DocumentMeta
}

// DocumentMeta carries the closed set of metadata fields the retrieval
// pipeline matches on, plus an open string bag for extension tags.
type DocumentMeta struct {
	Title    string
	Type     string // e.g. "man_page", "vignette", "package_description", "task_view"
	Package  string
	Function string
	Task     string // e.g. "statistical_modeling", "data_visualization"
	Extra    map[string]string
}

// ScoredDocument pairs a document with its relevance score.
type ScoredDocument struct {
	Doc   *Document
	Score float64
}

// RetrievalResult is an ordered sequence of scored documents, descending
// by score with stable tie-breaking. Results are recomputed per query and
// never persisted.
type RetrievalResult []ScoredDocument

// QuestionType categorizes a sub-question for targeted retrieval.
type QuestionType string

const (
	QuestionPackage  QuestionType = "package"
	QuestionFunction QuestionType = "function"
	QuestionConcept  QuestionType = "concept"
	QuestionExample  QuestionType = "example"
	QuestionGeneral  QuestionType = "general"
)

// ParseQuestionType maps a free-text type label to a QuestionType.
// Unknown labels map to QuestionGeneral.
func ParseQuestionType(s string) QuestionType {
	switch t := QuestionType(s); t {
	case QuestionPackage, QuestionFunction, QuestionConcept, QuestionExample, QuestionGeneral:
		return t
	default:
		return QuestionGeneral
	}
}

// Sub-question priorities. Lower is more important.
const (
	PriorityCritical  = 1
	PriorityImportant = 2
	PriorityHelpful   = 3
)

// SubQuestion is a single decomposed research question.
// Produced by the decomposer, consumed once by the multi-hop retriever,
// then discarded.
type SubQuestion struct {
	Question string
	Type     QuestionType
	Priority int
}
