package slug

import "strings"

// Make converts a test name into the filesystem key used for all of its
// artifacts. Runs of characters outside [a-z0-9] collapse to a single hyphen
// and leading/trailing hyphens are removed. Changing this function orphans
// every existing baseline.
func Make(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteByte(c)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
