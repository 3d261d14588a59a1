package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/slanttower/pkg/assembly"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/feature"
	"github.com/matzehuels/slanttower/pkg/frame"
	"github.com/matzehuels/slanttower/pkg/observability"
	"github.com/matzehuels/slanttower/pkg/sink"
)

// Export renders part in every requested format. marks feed the SVG
// drawing and may be nil when SVG is not requested.
func Export(ctx context.Context, part *assembly.Part, marks map[frame.Face][]feature.Mark, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := exportFormat(ctx, part, marks, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func exportFormat(ctx context.Context, part *assembly.Part, marks map[frame.Face][]feature.Mark, format string, opts Options) (data []byte, err error) {
	hooks := observability.Export()
	hooks.OnExportStart(ctx, format)
	start := time.Now()
	defer func() { hooks.OnExportComplete(ctx, format, len(data), time.Since(start), err) }()

	name := opts.Config.Name
	switch format {
	case FormatSTL:
		return sink.RenderSTL(part, sink.WithCellSize(opts.CellSize), sink.WithSolidName(name))
	case FormatSTLASCII:
		return sink.RenderSTL(part, sink.WithCellSize(opts.CellSize), sink.WithSolidName(name), sink.WithASCII())
	case FormatJSON:
		return sink.RenderJSON(part, sink.WithReportName(name), sink.WithReportResolution(opts.Resolution))
	case FormatSVG:
		if part == nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "no part to draw")
		}
		return sink.RenderSVG(part.Dims, marks, sink.WithSVGTitle(name)), nil
	default:
		return nil, ValidateFormat(format)
	}
}

func needsMarks(formats []string) bool {
	for _, f := range formats {
		if f == FormatSVG {
			return true
		}
	}
	return false
}
