// Package reembed regenerates document embeddings in bulk.
//
// Switching embedding models invalidates every stored vector; this
// package walks the corpus in batches, embeds each batch with retry and
// backoff, and swaps the new vectors into the store with progress
// reporting along the way.
package reembed
