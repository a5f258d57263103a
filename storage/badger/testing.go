package badger

// NewMemoryBlobStore opens an in-memory backend for tests.
// Panics on failure since an in-memory open only fails on programmer error.
func NewMemoryBlobStore() *Backend {
	b, err := OpenBackend("", true)
	if err != nil {
		panic(err)
	}
	return b
}
