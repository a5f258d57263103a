package retrieve

import "github.com/poiesic/retrievit/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate passes and final results.
type RetrievalMonitor interface {
	Start(query string)
	AfterLexicalPass(ids []string)
	AfterVectorPass(ids []string)
	Finish(results core.RetrievalResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                {}
func (n *noopMonitor) AfterLexicalPass(_ []string)   {}
func (n *noopMonitor) AfterVectorPass(_ []string)    {}
func (n *noopMonitor) Finish(_ core.RetrievalResult) {}
