// Package pkg provides the core libraries for Slanttower tower generation.
//
// # Overview
//
// Slanttower builds a hollow rectangular calibration tower and composes
// features onto its five visible faces: raised or engraved text, holes with
// a filleted or chamfered rim, grids of square cutouts, grids of spherical
// bumps and horizontal grooves. Every face contributes solids to add and
// solids to subtract; the assembly engine unions all additions onto the base
// box first and cuts all subtractions last, so a cut on one face also trims
// what another face added.
//
// # Architecture
//
// The typical data flow through Slanttower:
//
//	TOML config
//	     ↓
//	[config] (defaults, validation, per-face plan)
//	     ↓
//	[feature] builders (one bundle of add/subtract solids per face)
//	     ↓
//	[assembly] engine (add fold, then subtract fold)
//	     ↓
//	[sink] (STL, JSON report, SVG face drawing)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/slanttower/pkg/assembly"
//	    "github.com/matzehuels/slanttower/pkg/config"
//	    "github.com/matzehuels/slanttower/pkg/dims"
//	    "github.com/matzehuels/slanttower/pkg/kernel/implicit"
//	    "github.com/matzehuels/slanttower/pkg/sink"
//	)
//
//	// 1. Describe the tower
//	cfg := config.Default()
//	plan, _ := cfg.Plan()
//
//	// 2. Assemble it
//	k := implicit.New(implicit.WithResolution(0.1))
//	part, _ := assembly.New(k, plan).Build(context.Background(), dims.Default())
//
//	// 3. Export it
//	stl, _ := sink.RenderSTL(part)
//
// Most callers use [pipeline] instead, which adds caching and runs all
// three steps.
//
// # Main Packages
//
// ## Geometry
//
// [geom] - Vectors, rectangles, boxes and rigid placements.
//
// [kernel] - The solid-modelling interface: sketches, extrusions, primitives,
// booleans, text and edge treatments. [kernel/implicit] implements it with
// exact point membership and sampled volumes.
//
// [frame] - Face identities and the local frame (u, v, outward normal) of
// each face.
//
// [dims] - Validated tower dimensions.
//
// ## Features and Assembly
//
// [feature] - Feature specs and the per-face builder that turns them into
// bundles of additive and subtractive solids.
//
// [assembly] - Plans (one builder per face) and the engine that folds bundles
// into a part. Failures carry the face and role they came from.
//
// [fonts] - The typefaces text features can be cut in.
//
// ## Infrastructure
//
// [config] - TOML tower descriptions layered over the canonical defaults.
//
// [pipeline] - Complete build pipeline (resolve → assemble → export) used by
// the CLI.
//
// [sink] - Export formats: voxel-meshed STL, the JSON build report and an SVG
// drawing of the unfolded faces.
//
// [cache] - Artifact cache with file, Redis and null backends.
//
// [observability] - Build, export and cache hooks; [observability/prom]
// records them as Prometheus metrics.
//
// [errors] - Coded errors with face and role attribution.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/assembly/...           # Specific package
//	go test -short ./...                 # Skip the slow full-tower exports
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/geom
// [kernel]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/kernel
// [kernel/implicit]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/kernel/implicit
// [frame]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/frame
// [dims]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/dims
// [feature]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/feature
// [assembly]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/assembly
// [fonts]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/fonts
// [config]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/pipeline
// [sink]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/sink
// [cache]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/slanttower/pkg/errors
package pkg
