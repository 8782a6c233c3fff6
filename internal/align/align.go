// Package align computes word-level alignments between a reference
// transcript and a hypothesis transcript for word-error-rate display.
package align

import (
	"strings"
)

// Kind classifies one aligned segment.
type Kind string

const (
	Match        Kind = "match"
	Substitution Kind = "substitution"
	Deletion     Kind = "deletion"
	Insertion    Kind = "insertion"
)

// Segment is one unit of an alignment. Match and Substitution carry both
// tokens, Deletion carries only the reference token, Insertion carries only
// the hypothesis token. Tokens keep their original casing for display.
type Segment struct {
	Kind       Kind   `json:"kind"`
	Reference  string `json:"reference,omitempty"`
	Hypothesis string `json:"hypothesis,omitempty"`
}

// Align aligns the words of reference and hypothesis, minimizing total edit
// operations (substitutions, deletions and insertions cost 1, matches cost 0).
// Words are compared case-insensitively. At equal cost the alignment prefers
// substitution over deletion over insertion; the output is deterministic and
// ordered left to right. Align is pure and never fails: empty inputs produce
// an empty or one-sided alignment.
//
// The algorithm is O(m*n) in word counts, so interactive callers should bound
// input size.
func Align(reference, hypothesis string) []Segment {
	ref := strings.Fields(reference)
	hyp := strings.Fields(hypothesis)

	m, n := len(ref), len(hyp)
	if m == 0 && n == 0 {
		return []Segment{}
	}

	refLower := lowerAll(ref)
	hypLower := lowerAll(hyp)

	// d[i][j] holds the edit distance between ref[i:] and hyp[j:], stored in
	// a flat (m+1)x(n+1) table. Filling from the bottom-right lets the
	// reconstruction below walk forward from (0,0), emitting segments in
	// original token order without a reversal pass.
	width := n + 1
	d := make([]int, (m+1)*width)
	for j := n; j >= 0; j-- {
		d[m*width+j] = n - j
	}
	for i := m - 1; i >= 0; i-- {
		d[i*width+n] = m - i
		for j := n - 1; j >= 0; j-- {
			if refLower[i] == hypLower[j] {
				d[i*width+j] = d[(i+1)*width+j+1]
				continue
			}
			best := d[(i+1)*width+j+1] // substitution
			if del := d[(i+1)*width+j]; del < best {
				best = del
			}
			if ins := d[i*width+j+1]; ins < best {
				best = ins
			}
			d[i*width+j] = 1 + best
		}
	}

	segments := make([]Segment, 0, max(m, n))
	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && j < n && refLower[i] == hypLower[j] && d[i*width+j] == d[(i+1)*width+j+1]:
			segments = append(segments, Segment{Kind: Match, Reference: ref[i], Hypothesis: hyp[j]})
			i++
			j++
		// Cost-tied cells resolve in this order: substitution, deletion,
		// insertion. Changing the order changes which segments are reported
		// for equal-cost inputs.
		case i < m && j < n && d[i*width+j] == 1+d[(i+1)*width+j+1]:
			segments = append(segments, Segment{Kind: Substitution, Reference: ref[i], Hypothesis: hyp[j]})
			i++
			j++
		case i < m && d[i*width+j] == 1+d[(i+1)*width+j]:
			segments = append(segments, Segment{Kind: Deletion, Reference: ref[i]})
			i++
		default:
			segments = append(segments, Segment{Kind: Insertion, Hypothesis: hyp[j]})
			j++
		}
	}

	return segments
}

func lowerAll(words []string) []string {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	return lowered
}
