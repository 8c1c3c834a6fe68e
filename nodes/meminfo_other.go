//go:build !linux

package nodes

// DefaultEnricher returns nil: only linux exposes /proc/meminfo.
func DefaultEnricher(string) Enricher {
	return nil
}
