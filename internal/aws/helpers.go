package aws

import (
	"path"
	"strings"
)

// ObjectPrefix returns the key prefix holding the nodes of one connection,
// always ending in a slash.
func ObjectPrefix(root string, parts ...string) string {
	elems := make([]string, 0, len(parts)+1)
	for _, p := range append([]string{root}, parts...) {
		if p = strings.Trim(p, "/"); p != "" {
			elems = append(elems, p)
		}
	}
	if len(elems) == 0 {
		return ""
	}
	return path.Join(elems...) + "/"
}
