package domain

// RawRecord is one already-extracted source record handed over by the
// document ingestor: a source kind tag plus a bag of named fields.
type RawRecord struct {
	Kind   SourceKind
	Fields map[string]any
}

// RecordError describes one record the chunker had to skip.
type RecordError struct {
	Index  int        `json:"index"`
	Kind   SourceKind `json:"kind"`
	Reason string     `json:"reason"`
}

// IngestReport is the batch outcome of one ingestion pass. Skipped
// records never abort the pass.
type IngestReport struct {
	Documents int           `json:"documents"`
	Pending   int           `json:"pending_embeddings"`
	Skipped   []RecordError `json:"skipped,omitempty"`
}
