// Package vocab builds the word↔id mapping every other stage indexes by.
//
// Ids are dense and assigned by descending corpus frequency. The sentence
// boundary and padding sentinels always exist and always take the three
// lowest ids.
package vocab

import (
	"slices"
)

// Sentinel tokens, in id order.
const (
	BOS = "<s>"
	EOS = "</s>"
	PAD = "<p>"
)

// Sentinels lists the sentinel tokens in the order they receive ids.
var Sentinels = [...]string{BOS, EOS, PAD}

// Vocabulary is an immutable bidirectional word↔id mapping.
type Vocabulary struct {
	words  []string
	counts []int
	ids    map[string]int
}

type options struct {
	minCount int
}

// Option configures Build.
type Option func(*options)

// WithMinCount drops words seen fewer than n times. n <= 0 keeps every word.
func WithMinCount(n int) Option {
	return func(o *options) {
		o.minCount = n
	}
}

// Build counts the tokens of sentences and assigns ids.
//
// Sentinels are injected with counts strictly above every real word, so they
// hold ids 0, 1 and 2. Remaining words are ordered by descending count; ties
// keep first-seen order. An empty corpus yields a sentinel-only vocabulary.
func Build(sentences [][]string, optFns ...Option) *Vocabulary {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	counts := make(map[string]int)
	var order []string
	for _, s := range sentences {
		for _, w := range s {
			if _, ok := counts[w]; !ok {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	maxCount := 0
	kept := make([]string, 0, len(order))
	for _, w := range order {
		if isSentinel(w) {
			continue
		}
		c := counts[w]
		if o.minCount > 0 && c < o.minCount {
			continue
		}
		kept = append(kept, w)
		maxCount = max(maxCount, c)
	}

	// Stable, so equal counts stay in first-seen order.
	slices.SortStableFunc(kept, func(a, b string) int {
		return counts[b] - counts[a]
	})

	v := &Vocabulary{
		words:  make([]string, 0, len(kept)+len(Sentinels)),
		counts: make([]int, 0, len(kept)+len(Sentinels)),
		ids:    make(map[string]int, len(kept)+len(Sentinels)),
	}
	for i, s := range Sentinels {
		v.add(s, maxCount+len(Sentinels)-i)
	}
	for _, w := range kept {
		v.add(w, counts[w])
	}
	return v
}

func isSentinel(w string) bool {
	return w == BOS || w == EOS || w == PAD
}

func (v *Vocabulary) add(w string, count int) {
	v.ids[w] = len(v.words)
	v.words = append(v.words, w)
	v.counts = append(v.counts, count)
}

// Len returns the number of words, sentinels included.
func (v *Vocabulary) Len() int {
	return len(v.words)
}

// ID returns the id of w.
func (v *Vocabulary) ID(w string) (int, bool) {
	id, ok := v.ids[w]
	return id, ok
}

// Word returns the word with the given id. It panics if id is out of range.
func (v *Vocabulary) Word(id int) string {
	return v.words[id]
}

// Count returns the frequency recorded for id. Sentinel counts are synthetic.
func (v *Vocabulary) Count(id int) int {
	return v.counts[id]
}

// Words returns a copy of the id→word list.
func (v *Vocabulary) Words() []string {
	return slices.Clone(v.words)
}

// Lookup maps tokens to ids, dropping tokens outside the vocabulary.
// The second result reports how many tokens were dropped.
func (v *Vocabulary) Lookup(tokens []string) ([]int, int) {
	ids := make([]int, 0, len(tokens))
	dropped := 0
	for _, t := range tokens {
		if id, ok := v.ids[t]; ok {
			ids = append(ids, id)
		} else {
			dropped++
		}
	}
	return ids, dropped
}
