package exercise

import (
	"strconv"
	"strings"
)

// project converts the arranged draft to integer-keyed form. Keys that are
// not positive base-10 integers are dropped. Optional parts left empty
// become nil.
func project(d *draft, a arrangement) *Exercise {
	ex := &Exercise{
		Article:   d.article,
		Options:   make(map[int]Options, a.options.len()),
		AnswerKey: make(map[int]string, a.options.len()),
	}

	// Aliased keys such as "01" and "1" name the same blank. The last one
	// wins, and its detail set is the only one that may describe its options.
	source := make(map[int]string, a.options.len())
	for _, key := range a.options.keys {
		if n, ok := ParseBlank(key); ok {
			source[n] = key
		}
	}

	for n, key := range source {
		ex.Options[n] = a.options.vals[key]
		ex.AnswerKey[n] = a.answers.vals[key]
		detail, ok := a.details.get(key)
		if !ok {
			continue
		}
		if ex.OptionsDetail == nil {
			ex.OptionsDetail = make(map[int][4]OptionDetail)
		}
		ex.OptionsDetail[n] = detail
	}

	if len(d.annotations) > 0 {
		ex.Annotations = d.annotations
	}
	return ex
}

// ParseBlank parses a blank key such as "3". Only positive base-10
// integers are blank numbers.
func ParseBlank(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
