package exercise

import (
	"regexp"
	"slices"
	"strconv"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*(\d+)\s*\}\}`)

// Placeholders returns the distinct blank numbers referenced as {{n}} in
// article, in ascending order.
func Placeholders(article string) []int {
	var out []int
	for _, m := range placeholderRe.FindAllStringSubmatch(article, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// crossCheck compares the article's placeholders with the option keys.
// Neither direction is an error; callers only log it.
func crossCheck(ex *Exercise) (missing, unused []int) {
	seen := make(map[int]bool)
	for _, n := range Placeholders(ex.Article) {
		seen[n] = true
		if _, ok := ex.Options[n]; !ok {
			missing = append(missing, n)
		}
	}
	for _, n := range ex.Blanks() {
		if !seen[n] {
			unused = append(unused, n)
		}
	}
	return missing, unused
}
