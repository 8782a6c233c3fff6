package align

// Summary aggregates an alignment into the counts shown next to a diff.
type Summary struct {
	Matches         int     `json:"matches"`
	Substitutions   int     `json:"substitutions"`
	Deletions       int     `json:"deletions"`
	Insertions      int     `json:"insertions"`
	ReferenceWords  int     `json:"reference_words"`
	HypothesisWords int     `json:"hypothesis_words"`
	WordErrorRate   float64 `json:"word_error_rate"`
}

// Summarize computes error counts and the word error rate for an alignment.
// WER is (substitutions + deletions + insertions) / reference word count;
// an empty reference with a non-empty hypothesis yields a WER equal to the
// insertion count (each inserted word counts as one full error).
func Summarize(segments []Segment) Summary {
	var s Summary
	for _, seg := range segments {
		switch seg.Kind {
		case Match:
			s.Matches++
		case Substitution:
			s.Substitutions++
		case Deletion:
			s.Deletions++
		case Insertion:
			s.Insertions++
		}
	}

	s.ReferenceWords = s.Matches + s.Substitutions + s.Deletions
	s.HypothesisWords = s.Matches + s.Substitutions + s.Insertions

	errors := s.Substitutions + s.Deletions + s.Insertions
	denom := s.ReferenceWords
	if denom == 0 {
		denom = 1
	}
	s.WordErrorRate = float64(errors) / float64(denom)
	return s
}
