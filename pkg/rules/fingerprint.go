package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint returns a stable content hash of the rules.
//
// The hash is computed over a canonical text encoding (sorted categories,
// fixed field order) so that two Rules values with equal content always
// produce the same fingerprint, regardless of map iteration order or how
// the value was constructed. Fingerprints key the map cache and are stored
// in generated maps as the rules identifier.
func (r Rules) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "name=%s\n", r.Name)
	fmt.Fprintf(&b, "nodes=%d..%d\n", r.MinNodesPerLayer, r.MaxNodesPerLayer)
	fmt.Fprintf(&b, "minconn=%d\n", r.MinConnectionsPerNode)
	for _, c := range r.Categories() {
		fmt.Fprintf(&b, "w[%s]=%g\n", c, r.CategoryWeights[c])
	}
	for i, label := range r.LayerLabels {
		fmt.Fprintf(&b, "layer[%d]=%s\n", i, label)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
