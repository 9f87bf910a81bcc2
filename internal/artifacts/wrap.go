package artifacts

import "strings"

// WrapText breaks text into lines whose measured width stays below maxWidth.
// Existing line breaks are kept, words are never split, and a single word
// wider than maxWidth gets a line of its own.
func WrapText(text string, maxWidth float64, measure func(string) float64) []string {
	var out []string
	for _, src := range strings.Split(text, "\n") {
		src = strings.TrimRight(src, "\r")
		if strings.TrimSpace(src) == "" {
			out = append(out, "")
			continue
		}

		current := ""
		for _, word := range strings.Fields(src) {
			if current == "" {
				current = word
				continue
			}
			candidate := current + " " + word
			if measure(candidate) < maxWidth {
				current = candidate
				continue
			}
			out = append(out, current)
			current = word
		}
		if current != "" {
			out = append(out, current)
		}
	}
	return out
}
