package remote

import "strings"

// Target is the configured repository snapshots are read from.
type Target struct {
	Owner      string
	Repository string
	Branch     string
	Token      string
}

// Configured reports whether owner and repository are both set.
func (t Target) Configured() bool {
	return strings.TrimSpace(t.Owner) != "" && strings.TrimSpace(t.Repository) != ""
}

func (t Target) branch() string {
	if t.Branch == "" {
		return "main"
	}
	return t.Branch
}

func (t Target) String() string {
	return t.Owner + "/" + t.Repository + "@" + t.branch()
}

// Entry is one item of a directory listing.
type Entry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
