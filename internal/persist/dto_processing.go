package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/autoprep/internal/core"
)

// ProcessingInput is the client-side shape of a processing record.
// ProcessingTime is in milliseconds.
type ProcessingInput struct {
	Transformations json.RawMessage `json:"transformations"`
	BeforeStats     json.RawMessage `json:"before_stats,omitempty"`
	AfterStats      json.RawMessage `json:"after_stats,omitempty"`
	ProcessingTime  float64         `json:"processing_time" validate:"gte=0"`
}

// ProcessingRecord is a stored processing record as the backend returns it.
type ProcessingRecord struct {
	ID            string          `json:"id"`
	Steps         json.RawMessage `json:"steps"`
	ResultPreview json.RawMessage `json:"result_preview"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

type resultPreview struct {
	BeforeStats    json.RawMessage `json:"before_stats,omitempty"`
	AfterStats     json.RawMessage `json:"after_stats,omitempty"`
	ProcessingTime float64         `json:"processing_time"`
}

// processingPayload is the body the backend accepts for a processing record.
type processingPayload struct {
	Steps         json.RawMessage `json:"steps"`
	ResultPreview resultPreview   `json:"result_preview"`
}

func (in ProcessingInput) toPayload() processingPayload {
	steps := in.Transformations
	if len(steps) == 0 {
		steps = json.RawMessage("[]")
	}
	return processingPayload{
		Steps: steps,
		ResultPreview: resultPreview{
			BeforeStats:    in.BeforeStats,
			AfterStats:     in.AfterStats,
			ProcessingTime: in.ProcessingTime,
		},
	}
}

// Input converts a stored record back to the client-side shape.
func (p ProcessingRecord) Input() (ProcessingInput, error) {
	in := ProcessingInput{Transformations: p.Steps}
	if len(p.ResultPreview) > 0 && string(p.ResultPreview) != "null" {
		var rp resultPreview
		if err := json.Unmarshal(p.ResultPreview, &rp); err != nil {
			return in, fmt.Errorf("decode result preview: %w", err)
		}
		in.BeforeStats = rp.BeforeStats
		in.AfterStats = rp.AfterStats
		in.ProcessingTime = rp.ProcessingTime
	}
	return in, nil
}

// NewProcessingInput records one run of the cleaning pipeline.
func NewProcessingInput(steps []core.Step, before, after core.Summary, elapsed time.Duration) (ProcessingInput, error) {
	if steps == nil {
		steps = []core.Step{}
	}
	s, err := json.Marshal(steps)
	if err != nil {
		return ProcessingInput{}, fmt.Errorf("encode steps: %w", err)
	}
	b, err := json.Marshal(before)
	if err != nil {
		return ProcessingInput{}, fmt.Errorf("encode before stats: %w", err)
	}
	a, err := json.Marshal(after)
	if err != nil {
		return ProcessingInput{}, fmt.Errorf("encode after stats: %w", err)
	}
	return ProcessingInput{
		Transformations: s,
		BeforeStats:     b,
		AfterStats:      a,
		ProcessingTime:  float64(elapsed.Microseconds()) / 1000,
	}, nil
}
