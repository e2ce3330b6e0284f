package analysis

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrDuplicatePackage is wrapped by the error Database construction returns
// when two projects in the active profile report the same package name.
var ErrDuplicatePackage = errors.New("duplicate package name in active profile")

// project bundles a project's language with its analysis facts.
type project struct {
	Language Language
	Entry    Entry
}

// Database is the immutable mapping of project handle to analysis facts,
// plus a unique package-name index, built once per invocation from the
// analyzer's output and never mutated afterward.
//
// Invariant: package names are unique across the active profile; duplicates
// are a fatal construction error.
type Database struct {
	projects map[ProjectHandle]project
	byName   map[string]ProjectHandle
}

// NewDatabase builds a Database from per-project analysis results. handles
// and entries/languages must be the same length and correspond positionally.
func NewDatabase(handles []ProjectHandle, languages []Language, entries []Entry) (*Database, error) {
	if len(handles) != len(languages) || len(handles) != len(entries) {
		return nil, errors.New("analysis: handles, languages and entries must have equal length")
	}

	db := &Database{
		projects: make(map[ProjectHandle]project, len(handles)),
		byName:   make(map[string]ProjectHandle, len(handles)),
	}

	// Sort by handle string for deterministic duplicate-error ordering.
	order := make([]int, len(handles))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return handles[order[i]].String() < handles[order[j]].String()
	})

	for _, i := range order {
		h, lang, e := handles[i], languages[i], entries[i]
		if existing, ok := db.byName[e.Package]; ok {
			return nil, errors.Wrapf(ErrDuplicatePackage, "%q claimed by both %s and %s", e.Package, existing, h)
		}
		db.projects[h] = project{Language: lang, Entry: e}
		db.byName[e.Package] = h
	}

	return db, nil
}

// Handles returns all project handles in the database, sorted for
// deterministic iteration.
func (db *Database) Handles() []ProjectHandle {
	out := make([]ProjectHandle, 0, len(db.projects))
	for h := range db.projects {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Entry returns the analysis facts for a project handle.
func (db *Database) Entry(h ProjectHandle) (Entry, bool) {
	p, ok := db.projects[h]
	return p.Entry, ok
}

// Language returns the analyzer language for a project handle.
func (db *Database) Language(h ProjectHandle) (Language, bool) {
	p, ok := db.projects[h]
	return p.Language, ok
}

// HandleForPackage resolves a package name to the project handle that
// defines it, using the unique package-name index.
func (db *Database) HandleForPackage(pkg string) (ProjectHandle, bool) {
	h, ok := db.byName[pkg]
	return h, ok
}

// HasPackage reports whether pkg is managed by this database (i.e. is one
// of the active profile's own packages, not an external dependency).
func (db *Database) HasPackage(pkg string) bool {
	_, ok := db.byName[pkg]
	return ok
}

func (h ProjectHandle) GoString() string {
	return fmt.Sprintf("ProjectHandle(%s)", h.String())
}
