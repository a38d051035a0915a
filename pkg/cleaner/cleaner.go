// Package cleaner strips the prose and markdown wrapping models put around code.
package cleaner

import (
	"regexp"
	"strings"
)

var fence = regexp.MustCompile("```[\\w+-]*")

// StartMarkers are the tokens an artifact may begin with. The earliest one wins.
var StartMarkers = []string{"import ", "@Component"}

// Clean returns the artifact contained in raw model output.
//
// It removes every code-fence marker, drops everything before the first start
// marker and everything after the last closing brace. Clean is idempotent.
func Clean(raw string) string {
	out := raw
	for fence.MatchString(out) {
		out = fence.ReplaceAllString(out, "")
	}

	if start := earliest(out, StartMarkers); start > 0 {
		out = out[start:]
	}

	if end := strings.LastIndex(out, "}"); end >= 0 {
		out = out[:end+1]
	}
	return strings.TrimSpace(out)
}

func earliest(s string, markers []string) int {
	idx := -1
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && (idx < 0 || i < idx) {
			idx = i
		}
	}
	return idx
}
