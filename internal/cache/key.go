package cache

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Key derives the cache key for a batch request. The order of ids does not
// affect the result.
func Key(endpoint string, ids []string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	d := xxhash.New()
	_, _ = d.WriteString(endpoint)
	for _, id := range sorted {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(id)
	}
	return fmt.Sprintf("%s-%016x", endpoint, d.Sum64())
}
