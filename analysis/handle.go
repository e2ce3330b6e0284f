package analysis

import "strings"

// ProjectHandle identifies a project: either a bare repository ("repo") or
// a subpath within one ("repo:subpath"), mirroring how the workspace
// manifest names checked-out repositories.
type ProjectHandle struct {
	Repo    string
	Subpath string
}

// ParseProjectHandle parses "repo" or "repo:subpath" into a ProjectHandle.
func ParseProjectHandle(s string) ProjectHandle {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return ProjectHandle{Repo: s[:i], Subpath: s[i+1:]}
	}
	return ProjectHandle{Repo: s}
}

// String renders the handle back to "repo" or "repo:subpath".
func (h ProjectHandle) String() string {
	if h.Subpath == "" {
		return h.Repo
	}
	return h.Repo + ":" + h.Subpath
}
