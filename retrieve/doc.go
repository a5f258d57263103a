// Package retrieve implements hybrid and multi-hop document retrieval.
//
// The hybrid retriever runs a BM25 lexical pass and a vector similarity
// pass over the same corpus snapshot, normalizes each pass against its
// own maximum score, and fuses them with a fixed lexical weight. The
// multi-hop retriever layers sequential, context-carrying hops on top,
// one per decomposed sub-question, with type-aware re-ranking per hop.
package retrieve
