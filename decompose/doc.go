// Package decompose turns user queries into typed sub-questions.
//
// The decomposer asks a language model for a JSON array of sub-questions
// and keeps keyword-rule fallbacks for when the model fails or answers
// with something that cannot be parsed. Every non-empty query decomposes
// into at least one sub-question.
package decompose
