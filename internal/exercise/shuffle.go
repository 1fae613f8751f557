package exercise

import "math/rand/v2"

// Shuffler permutes n elements through swap. *rand.Rand satisfies it, so
// tests can pass a seeded source.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// arrangement is the draft after its options were shuffled.
type arrangement struct {
	options keyed[Options]
	details keyed[[4]OptionDetail]
	answers keyed[string]
}

// arrange shuffles every blank's options and reorders its details to match.
// A blank whose details cannot be paired one-to-one with the shuffled
// options loses its details; the options are kept.
func arrange(d *draft, s Shuffler) arrangement {
	a := arrangement{
		options: newKeyed[Options](),
		details: newKeyed[[4]OptionDetail](),
		answers: newKeyed[string](),
	}
	for _, key := range d.options.keys {
		opts := d.options.vals[key]
		a.answers.set(key, opts[0])

		s.Shuffle(len(opts), func(i, j int) {
			opts[i], opts[j] = opts[j], opts[i]
		})
		a.options.set(key, opts)

		entries, ok := d.details.get(key)
		if !ok {
			continue
		}
		if ordered, ok := reconcile(opts, entries); ok {
			a.details.set(key, ordered)
		}
	}
	return a
}

// reconcile orders entries to follow opts by exact word match. Each entry
// is used at most once, so duplicate option strings need duplicate entries.
func reconcile(opts Options, entries []OptionDetail) ([4]OptionDetail, bool) {
	var out [4]OptionDetail
	used := make([]bool, len(entries))
	for i, opt := range opts {
		found := false
		for j, e := range entries {
			if !used[j] && e.Word == opt {
				used[j] = true
				out[i] = e
				found = true
				break
			}
		}
		if !found {
			return out, false
		}
	}
	return out, true
}
