package ridership

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyInput is returned when the raw batch holds no readings at
	// all. Per-record problems never surface as errors; a completely empty
	// batch is the systemic failure the caller must hear about.
	ErrEmptyInput = errors.New("ridership: empty input batch")

	// ErrNoUsableRecords is returned when every reading in the batch was
	// malformed.
	ErrNoUsableRecords = errors.New("ridership: no readings survived normalization")
)

// PipelineOptions configure one RunPipeline call. The zero value selects
// the defaults (New York timestamps, 10,000 anomaly ceiling).
type PipelineOptions struct {
	Location *time.Location
	Delta    DeltaOptions
}

// ProcessingSummary reports what one pipeline run ingested and dropped.
type ProcessingSummary struct {
	RawReadings       int
	Malformed         int
	Delta             DeltaStats
	CleanedRecords    int
	UnmatchedStations int
}

// RunPipeline runs normalize, delta computation and coordinate enrichment
// over one raw batch and returns the cleaned records together with the drop
// accounting. coordinates may be nil, in which case every record keeps the
// NaN coordinate sentinel.
func RunPipeline(raw []RawReading, coordinates CoordinateTable, opts PipelineOptions) (RecordSet, ProcessingSummary, error) {
	summary := ProcessingSummary{RawReadings: len(raw)}

	if len(raw) == 0 {
		return nil, summary, ErrEmptyInput
	}

	readings, malformed := NormalizeReadings(raw, opts.Location)
	summary.Malformed = malformed
	if len(readings) == 0 {
		return nil, summary, ErrNoUsableRecords
	}

	records, stats := ComputeDeltas(readings, opts.Delta)
	summary.Delta = stats
	summary.CleanedRecords = len(records)

	if coordinates != nil {
		summary.UnmatchedStations = EnrichCoordinates(records, coordinates)
	}

	log.Info().
		Int("raw", summary.RawReadings).
		Int("malformed", summary.Malformed).
		Int("turnstiles", stats.Groups).
		Int("duplicates", stats.DuplicateTimestamps).
		Int("resets", stats.NegativeDeltas).
		Int("rollovers", stats.CeilingExceeded).
		Int("cleaned", summary.CleanedRecords).
		Msg("Pipeline run complete")

	return RecordSet(records), summary, nil
}
