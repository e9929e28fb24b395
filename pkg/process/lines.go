package process

import "strings"

// SplitLines splits raw terminal output into lines. The "\r\n" terminal line
// ending is stripped and lines left empty are dropped. A trailing partial
// line, such as an unanswered prompt, is kept.
func SplitLines(data []byte) []string {
	var lines []string
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
