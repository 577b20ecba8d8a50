// Package pipeline runs the full resolution pass for one document:
// locate config directories, find config files, parse associations, match
// patterns. Every call re-walks the filesystem and re-parses every config
// file, so an edited config file takes effect on the next resolution.
package pipeline

import (
	"path/filepath"

	"schemap/internal/association"
	"schemap/internal/discover"
	"schemap/internal/fsys"
	"schemap/internal/resolver"
	"schemap/internal/settings"
)

// Result is the outcome of one resolution pass.
type Result struct {
	// DocumentPath is the cleaned document path the patterns were
	// matched against.
	DocumentPath string

	// Schemas is the ordered resolved schema set. Duplicates are kept;
	// empty means no schema applies.
	Schemas []string

	// ConfigFiles lists the config files consulted, nearest config
	// directory first.
	ConfigFiles []string

	// Problems collects the non-fatal failures of the pass:
	// *discover.UnreadableEntryError and *association.MalformedConfigError.
	// A problem means fewer associations were found, never an abort.
	Problems []error
}

// Pipeline resolves documents against a filesystem and compiled settings.
// It holds no mutable state; concurrent Resolve calls are independent.
type Pipeline struct {
	fs  fsys.FS
	cfg settings.Compiled
}

// New returns a pipeline over the given filesystem.
func New(fs fsys.FS, cfg settings.Compiled) *Pipeline {
	return &Pipeline{fs: fs, cfg: cfg}
}

// Resolve computes the resolved schema set for documentPath. The ancestor
// walk starts at the document's directory. The only fatal failure is an
// invalid starting point, reported as *discover.InvalidStartError; every
// other failure degrades to a Problems entry.
func (p *Pipeline) Resolve(documentPath string) (Result, error) {
	doc := filepath.Clean(documentPath)
	res := Result{DocumentPath: doc}

	dirs, problems, err := discover.Locate(p.fs, filepath.Dir(doc), p.cfg.DirPattern)
	if err != nil {
		return Result{}, err
	}
	res.Problems = append(res.Problems, problems...)

	files, problems := discover.FindFiles(p.fs, dirs, p.cfg.FilePattern)
	res.Problems = append(res.Problems, problems...)
	res.ConfigFiles = files

	var assocs []association.Association
	for _, file := range files {
		content, err := p.fs.ReadFile(file)
		if err != nil {
			res.Problems = append(res.Problems, &discover.UnreadableEntryError{Path: file, Err: err})
			continue
		}
		parsed, err := association.Parse(file, content)
		if err != nil {
			res.Problems = append(res.Problems, err)
			continue
		}
		assocs = append(assocs, parsed...)
	}

	res.Schemas = resolver.Resolve(doc, assocs)
	return res, nil
}
