// Package resolver matches a document path against pattern associations to
// produce the ordered set of schema paths the document should be validated
// against.
package resolver

import "schemap/internal/association"

// Resolve tests every association's pattern against documentPath and returns
// the schema paths of the ones that match, in input order.
//
// Matching is an unanchored regexp search over the full document path, so a
// pattern matches if it occurs anywhere in the path unless it anchors itself.
// All matches are kept: no deduplication, no short-circuit. An empty result
// means no schema applies, which is a normal outcome, not an error.
func Resolve(documentPath string, assocs []association.Association) []string {
	schemas := make([]string, 0, len(assocs))
	for _, a := range assocs {
		if a.Pattern.MatchString(documentPath) {
			schemas = append(schemas, a.SchemaPath)
		}
	}
	return schemas
}
