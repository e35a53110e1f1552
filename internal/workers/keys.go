package workers

import (
	"net/url"
	"strings"
)

// Record keys compose the owner (and list) scope with the resource name.
// Each component is path-escaped, so a "/" or "%" inside an identity or a
// name cannot alias another scope's key.
const (
	tasklistSpace = "tl/"
	taskSpace     = "t/"
)

func tasklistKey(owner, list string) string {
	return tasklistPrefix(owner) + url.PathEscape(list)
}

func tasklistPrefix(owner string) string {
	return tasklistSpace + url.PathEscape(owner) + "/"
}

func taskKey(owner, list, task string) string {
	return taskPrefix(owner, list) + url.PathEscape(task)
}

func taskPrefix(owner, list string) string {
	return taskSpace + url.PathEscape(owner) + "/" + url.PathEscape(list) + "/"
}

// nameFromKey recovers the resource name from a scanned store key given the
// prefix the scan used.
func nameFromKey(key, prefix string) (string, bool) {
	escaped, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return "", false
	}
	name, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return name, true
}
