package service

import (
	"fmt"
	"log/slog"
	"strings"

	"konsole/internal/align"
	"konsole/internal/config"
	"konsole/internal/domain"
)

// DiffRequest carries the two transcripts to compare. Empty strings are
// valid; the result is one-sided or empty.
type DiffRequest struct {
	Reference  string `json:"reference"`
	Hypothesis string `json:"hypothesis"`
}

// DiffResult is the alignment plus its aggregate counts.
type DiffResult struct {
	Segments []align.Segment `json:"segments"`
	Summary  align.Summary   `json:"summary"`
}

// TranscriptService computes word-level transcription diffs.
type TranscriptService struct {
	logger *slog.Logger
}

// NewTranscriptService creates a transcript service.
func NewTranscriptService(logger *slog.Logger) *TranscriptService {
	return &TranscriptService{logger: logger}
}

// Compare aligns reference against hypothesis and summarizes the result.
// Inputs are bounded at config.MaxTranscriptWords per side to keep the
// quadratic alignment interactive.
func (s *TranscriptService) Compare(req *DiffRequest) (*DiffResult, error) {
	if err := checkTranscriptSize("reference", req.Reference); err != nil {
		return nil, err
	}
	if err := checkTranscriptSize("hypothesis", req.Hypothesis); err != nil {
		return nil, err
	}

	segments := align.Align(req.Reference, req.Hypothesis)
	summary := align.Summarize(segments)

	s.logger.Debug("transcripts compared",
		"reference_words", summary.ReferenceWords,
		"hypothesis_words", summary.HypothesisWords,
		"wer", summary.WordErrorRate,
	)
	return &DiffResult{Segments: segments, Summary: summary}, nil
}

func checkTranscriptSize(field, text string) error {
	if words := len(strings.Fields(text)); words > config.MaxTranscriptWords {
		return &domain.ValidationError{
			Message: fmt.Sprintf("%s has %d words, limit is %d", field, words, config.MaxTranscriptWords),
		}
	}
	return nil
}
