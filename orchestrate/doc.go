// Package orchestrate drives the query answering workflow.
//
// A run moves through fixed stages: decompose the query, retrieve
// documentation hop by hop, synthesize an answer with the language
// model, and validate generated code blocks. Each stage degrades rather
// than aborts: a failed decomposition falls back to the raw query, a
// failed hop contributes nothing, and a failed or timed-out synthesis
// returns the retrieved context verbatim. The caller always receives a
// textual answer for a non-empty query.
package orchestrate
