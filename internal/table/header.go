package table

import (
	"strconv"
	"strings"
)

// CleanHeader normalizes header cells into unique column names.
//
// Each name is trimmed and unwrapped from Excel's ="..." formula form.
// Blank names become "Unnamed: <position>". Repeated names get a numeric
// suffix in order of appearance: a, a.1, a.2.
func CleanHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[cleanCell(h)] = true
	}

	for i, h := range header {
		name := cleanCell(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = base + "." + strconv.Itoa(n)
				if !taken[name] {
					break
				}
			}
			seen[base] = n
		} else {
			seen[name] = 0
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// cleanCell strips whitespace, Excel formula wrapping, and surrounding quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
