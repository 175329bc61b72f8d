// Package meshview loads solver result files into a mesh visualization
// tool.
//
// The tool itself is reached through the Viewer interface, which mirrors
// the three primitives the loader needs: enumerating the currently loaded
// views, removing a view by tag, and merging a result file into the
// current session.
package meshview

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// Viewer is the surface of the visualization tool used by the loader.
type Viewer interface {
	// ViewTags returns the tags of all currently loaded views.
	ViewTags() []int

	// RemoveView removes the view with the given tag.
	RemoveView(tag int)

	// Merge loads the named file into the current session.
	Merge(filename string) error
}

// FilterFunc selects which of a directory's file names to load. It
// receives the raw listing and returns the subset to keep.
type FilterFunc func(names []string) []string

// PosFilter keeps only ".pos" result files. It is the filter used when
// none is given.
func PosFilter(names []string) []string {
	var out []string
	for _, name := range names {
		if strings.HasSuffix(name, ".pos") {
			out = append(out, name)
		}
	}
	return out
}

// LoadResults removes every view currently loaded in v and merges the
// result files of dir, in lexicographic order, after applying filter
// (PosFilter if nil). The directory is created if absent. The working
// directory is switched to dir for the duration of the call and restored
// on every exit path, including a failing merge.
func LoadResults(v Viewer, dir string, filter FilterFunc) (err error) {
	if filter == nil {
		filter = PosFilter
	}

	// Remove old views.
	for _, tag := range v.ViewTags() {
		v.RemoveView(tag)
	}

	wd, err := EnterWorkdir(dir)
	if err != nil {
		return err
	}
	defer func() {
		if e := wd.Restore(); e != nil && err == nil {
			err = e
		}
	}()

	ents, err := os.ReadDir(".")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(ents))
	for _, ent := range ents {
		names = append(names, ent.Name())
	}
	names = filter(names)
	sort.Strings(names)

	for _, name := range names {
		if err := v.Merge(name); err != nil {
			return err
		}
	}
	return nil
}

// Workdir is a scoped working directory change. The process working
// directory is shared state; a Workdir must be restored on every exit
// path of the code that entered it.
type Workdir struct {
	prev string
}

// EnterWorkdir switches the working directory to dir, creating it first
// if it does not exist. A pre-existing directory is not an error.
func EnterWorkdir(dir string) (*Workdir, error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := os.Mkdir(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return nil, err
	}
	if err := os.Chdir(dir); err != nil {
		return nil, err
	}
	return &Workdir{prev: prev}, nil
}

// Restore switches back to the directory that was current when the
// Workdir was entered.
func (w *Workdir) Restore() error {
	return os.Chdir(w.prev)
}
