package config

const (
	// MaxTranscriptWords bounds each side of a diff request. The alignment
	// is O(m*n) in word counts, so unbounded transcripts would stall the
	// request; 5000 words covers over half an hour of speech.
	MaxTranscriptWords = 5000

	// MaxDatasetNameLength is the maximum length for dataset names.
	MaxDatasetNameLength = 255

	// MaxDatasetUploadBytes caps dataset uploads at 50MB.
	MaxDatasetUploadBytes = 50 << 20
)
