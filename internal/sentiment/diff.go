package sentiment

import "strings"

// Diff returns the lines of current that do not appear anywhere in previous,
// in the order they appear in current.
//
// Membership is by set: a line identical to one already seen in previous is
// dropped even if it is a genuinely new comment. The feed prepends timestamps,
// so identical lines are rare in practice.
func Diff(previous, current string) []string {
	seen := make(map[string]struct{})
	for _, line := range strings.Split(previous, "\n") {
		seen[line] = struct{}{}
	}

	var added []string
	for _, line := range strings.Split(current, "\n") {
		if _, ok := seen[line]; ok {
			continue
		}
		added = append(added, line)
	}
	return added
}
