package index

import (
	"sort"
	"sync"
)

// Neighbor represents a nearest neighbor match.
type Neighbor struct {
	ID       string
	Distance float64
}

// Vector is a flat exact nearest-neighbor index over fixed-length
// embeddings. Upserts are last-write-wins by ID. Distances are squared
// Euclidean, so smaller is closer and identical vectors are at distance 0.
type Vector struct {
	mu   sync.RWMutex
	ids  []string
	pos  map[string]int
	vecs [][]float32
}

// NewVector creates an empty vector index.
func NewVector() *Vector {
	return &Vector{pos: make(map[string]int)}
}

// Upsert inserts or replaces vectors by ID. ids and vectors must be the
// same length; positions are assigned in insertion order and reused on
// replacement.
func (v *Vector) Upsert(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return ErrLengthMismatch
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for i, id := range ids {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		if at, ok := v.pos[id]; ok {
			v.vecs[at] = vec
			continue
		}
		v.pos[id] = len(v.ids)
		v.ids = append(v.ids, id)
		v.vecs = append(v.vecs, vec)
	}
	return nil
}

// Query returns up to k nearest neighbors of the query vector, ordered by
// ascending distance with ties broken by insertion order.
func (v *Vector) Query(query []float32, k int) []Neighbor {
	v.mu.RLock()
	defer v.mu.RUnlock()

	neighbors := make([]Neighbor, len(v.ids))
	for i, id := range v.ids {
		neighbors[i] = Neighbor{ID: id, Distance: squaredEuclidean(query, v.vecs[i])}
	}
	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].Distance < neighbors[b].Distance
	})
	if k >= 0 && k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// Get returns a copy of the vector stored under id.
func (v *Vector) Get(id string) ([]float32, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	at, ok := v.pos[id]
	if !ok {
		return nil, false
	}
	vec := make([]float32, len(v.vecs[at]))
	copy(vec, v.vecs[at])
	return vec, true
}

// Len returns the number of stored vectors.
func (v *Vector) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.ids)
}

// Clone returns an independent copy of the index. The document store uses
// this to build the next snapshot without mutating the published one.
func (v *Vector) Clone() *Vector {
	v.mu.RLock()
	defer v.mu.RUnlock()

	clone := &Vector{
		ids:  make([]string, len(v.ids)),
		pos:  make(map[string]int, len(v.pos)),
		vecs: make([][]float32, len(v.vecs)),
	}
	copy(clone.ids, v.ids)
	for id, at := range v.pos {
		clone.pos[id] = at
	}
	for i, vec := range v.vecs {
		c := make([]float32, len(vec))
		copy(c, vec)
		clone.vecs[i] = c
	}
	return clone
}

// squaredEuclidean computes squared L2 distance over the common prefix of
// the two vectors. Mismatched lengths are tolerated rather than rejected;
// embeddings from one model version always agree on length.
func squaredEuclidean(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var sum float64
	for i := 0; i < minLen; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
