// Package discover finds config directories by walking a document's
// ancestor chain, and lists the config files inside them.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"schemap/internal/fsys"
)

// InvalidStartError reports a resolution starting point that does not exist
// or is not a directory. It fails the resolution call it occurred in and
// nothing else.
type InvalidStartError struct {
	Dir string
	Err error
}

func (e *InvalidStartError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid start directory %s: %v", e.Dir, e.Err)
	}
	return fmt.Sprintf("invalid start directory %s: not a directory", e.Dir)
}

func (e *InvalidStartError) Unwrap() error {
	return e.Err
}

// UnreadableEntryError records a filesystem entry that could not be read
// mid-walk (permissions, races). The entry is skipped; the walk continues.
type UnreadableEntryError struct {
	Path string
	Err  error
}

func (e *UnreadableEntryError) Error() string {
	return fmt.Sprintf("skipped unreadable entry %s: %v", e.Path, e.Err)
}

func (e *UnreadableEntryError) Unwrap() error {
	return e.Err
}

// Locate walks upward from startDir to the filesystem root, collecting the
// immediate child directories at each level whose full path matches
// dirPattern. The result is in discovery order, nearest level first; within
// one level entries are in name order. The walk inspects only each level's
// direct children, never sibling subtrees.
//
// Parents are computed lexically, without following symlinks, and a visited
// set guards against cycles through unusual mount or symlink setups. A
// missing or non-directory startDir fails with *InvalidStartError; levels
// that cannot be listed mid-walk are reported as *UnreadableEntryError
// problems and skipped.
func Locate(fs fsys.FS, startDir string, dirPattern *regexp.Regexp) ([]string, []error, error) {
	start := filepath.Clean(startDir)

	info, err := fs.Stat(start)
	if err != nil {
		return nil, nil, &InvalidStartError{Dir: start, Err: err}
	}
	if !info.IsDir() {
		return nil, nil, &InvalidStartError{Dir: start}
	}

	var (
		dirs     []string
		problems []error
		visited  = make(map[string]bool)
	)

	for cur := start; !visited[cur]; {
		visited[cur] = true

		entries, err := fs.ReadDir(cur)
		if err != nil {
			problems = append(problems, &UnreadableEntryError{Path: cur, Err: err})
		} else {
			for _, name := range sortedNames(entries, func(fi os.FileInfo) bool { return fi.IsDir() }) {
				full := fs.Join(cur, name)
				if dirPattern.MatchString(full) {
					dirs = append(dirs, full)
				}
			}
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	return dirs, problems, nil
}

// FindFiles lists each directory's immediate entries and keeps the regular
// files whose full path matches filePattern. Directories are processed
// independently in input order and the results concatenated; a directory
// with no matches contributes nothing. Symlinked entries are resolved with
// a follow-symlink stat so links to regular files count.
func FindFiles(fs fsys.FS, dirs []string, filePattern *regexp.Regexp) ([]string, []error) {
	var (
		files    []string
		problems []error
	)

	for _, dir := range dirs {
		entries, err := fs.ReadDir(dir)
		if err != nil {
			problems = append(problems, &UnreadableEntryError{Path: dir, Err: err})
			continue
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, entry := range entries {
			full := fs.Join(dir, entry.Name())

			mode := entry.Mode()
			if mode&os.ModeSymlink != 0 {
				info, err := fs.Stat(full)
				if err != nil {
					problems = append(problems, &UnreadableEntryError{Path: full, Err: err})
					continue
				}
				mode = info.Mode()
			}
			if !mode.IsRegular() {
				continue
			}

			if filePattern.MatchString(full) {
				files = append(files, full)
			}
		}
	}

	return files, problems
}

// sortedNames returns the names of the entries satisfying keep, sorted.
func sortedNames(entries []os.FileInfo, keep func(os.FileInfo) bool) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
