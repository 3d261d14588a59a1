package sink

import (
	"encoding/json"

	"github.com/matzehuels/slanttower/pkg/assembly"
	"github.com/matzehuels/slanttower/pkg/dims"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/geom"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*Report)

// WithReportName records the tower name.
func WithReportName(name string) JSONOption { return func(r *Report) { r.Name = name } }

// WithReportResolution records the kernel sampling cell the volume was
// integrated with.
func WithReportResolution(cell float64) JSONOption {
	return func(r *Report) { r.Resolution = cell }
}

// Report summarises one build.
type Report struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name,omitempty"`
	Dims       dims.Spec              `json:"dims"`
	Volume     float64                `json:"volume"`
	BaseVolume float64                `json:"base_volume"`
	Envelope   Box                    `json:"envelope"`
	Bounds     Box                    `json:"bounds"`
	Faces      []assembly.FaceSummary `json:"faces"`
	DurationMS int64                  `json:"duration_ms"`
	Resolution float64                `json:"resolution,omitempty"`
}

// Box is a JSON-friendly axis-aligned box.
type Box struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

func boxOf(b geom.Box) Box {
	return Box{
		Min: [3]float64{b.Min.X, b.Min.Y, b.Min.Z},
		Max: [3]float64{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// NewReport summarises part.
func NewReport(part *assembly.Part, opts ...JSONOption) Report {
	r := Report{
		ID:         part.ID,
		Dims:       part.Dims.Spec(),
		Volume:     part.Volume,
		BaseVolume: part.Dims.BaseVolume(),
		Envelope:   boxOf(part.Envelope),
		Bounds:     boxOf(part.Bounds),
		Faces:      part.Faces,
		DurationMS: part.Duration.Milliseconds(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderJSON writes the build report of part as indented JSON.
func RenderJSON(part *assembly.Part, opts ...JSONOption) ([]byte, error) {
	if part == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no part to report")
	}
	return json.MarshalIndent(NewReport(part, opts...), "", "  ")
}

// ParseReport reads a report written by RenderJSON.
func ParseReport(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse build report")
	}
	return r, nil
}
