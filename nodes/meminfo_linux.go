//go:build linux

package nodes

// DefaultEnricher returns the meminfo enricher for path, or DefaultMeminfoPath.
func DefaultEnricher(path string) Enricher {
	return MeminfoEnricher{Path: path}
}
