package remote

import "strings"

// SelectLatest picks the lexicographically greatest entry name that starts
// with prefix and ends with ext. Snapshot names embed zero-padded dates, so
// this is also the most recent one.
func SelectLatest(entries []Entry, prefix, ext string) (string, bool) {
	var latest string
	found := false
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, prefix) || !strings.HasSuffix(e.Name, ext) {
			continue
		}
		if !found || e.Name > latest {
			latest = e.Name
			found = true
		}
	}
	return latest, found
}
