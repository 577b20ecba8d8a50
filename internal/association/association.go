// Package association parses schema-pattern config files into ordered
// pattern/schema-path pairs.
package association

import (
	"fmt"
	"regexp"

	"schemap/internal/sexpr"
)

// MarkerTag is the atom a config file's top-level list must start with to
// be treated as an association file. Files with any other tag are skipped.
const MarkerTag = "schema-patterns"

// Association pairs a compiled filename pattern with the schema path that
// should validate matching documents.
type Association struct {
	Pattern    *regexp.Regexp
	Source     string // the pattern text as written in the config file
	SchemaPath string
}

// MalformedConfigError reports a config file whose content could not be
// parsed into associations. It is collected per file; one malformed file
// never aborts processing of the others.
type MalformedConfigError struct {
	Path string
	Err  error
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("malformed config %s: %v", e.Path, e.Err)
}

func (e *MalformedConfigError) Unwrap() error {
	return e.Err
}

// Parse reads one config file's content. The expected form is a tagged list:
//
//	(schema-patterns
//	  ("<pattern>" "<schema-path>")
//	  ...)
//
// A syntactically valid expression whose top level is not a list tagged
// schema-patterns yields no associations and no error, so unrelated files
// that happen to match the config filename pattern are skipped silently.
// Content that does not parse, entries that are not two-string lists, and
// patterns that do not compile all fail with *MalformedConfigError.
func Parse(path string, content []byte) ([]Association, error) {
	node, err := sexpr.Parse(string(content))
	if err != nil {
		return nil, &MalformedConfigError{Path: path, Err: err}
	}

	if node.Kind != sexpr.KindList || len(node.List) == 0 || !node.List[0].IsAtom(MarkerTag) {
		return nil, nil
	}

	assocs := make([]Association, 0, len(node.List)-1)
	for i, entry := range node.List[1:] {
		if entry.Kind != sexpr.KindList || len(entry.List) != 2 {
			return nil, &MalformedConfigError{
				Path: path,
				Err:  fmt.Errorf("entry %d: want a (pattern schema-path) pair", i+1),
			}
		}
		patNode, pathNode := entry.List[0], entry.List[1]
		if patNode.Kind != sexpr.KindString || pathNode.Kind != sexpr.KindString {
			return nil, &MalformedConfigError{
				Path: path,
				Err:  fmt.Errorf("entry %d: pattern and schema path must be strings", i+1),
			}
		}

		re, err := regexp.Compile(patNode.Text)
		if err != nil {
			return nil, &MalformedConfigError{
				Path: path,
				Err:  fmt.Errorf("entry %d: invalid pattern: %w", i+1, err),
			}
		}

		assocs = append(assocs, Association{
			Pattern:    re,
			Source:     patNode.Text,
			SchemaPath: pathNode.Text,
		})
	}
	return assocs, nil
}
