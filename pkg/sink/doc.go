// Package sink turns an assembled tower into files.
//
// # Overview
//
// A "sink" transforms an [assembly.Part] (or a plan's footprints) into a
// final output format. This package provides renderers for:
//
//   - STL: a closed triangle mesh for slicers, binary or ASCII
//   - JSON: a build report with volume, bounds and per-face contributions
//   - SVG: an unfolded drawing of the five faces and their feature footprints
//
// # STL Output
//
// The implicit kernel has no boundary representation, so [RenderSTL] samples
// the part on a voxel grid and emits every voxel face that borders empty
// space. The mesh is closed by construction: every edge is shared by faces
// of opposite orientation. Finer cells follow curved features more closely
// at the cost of file size.
//
//	stl, err := sink.RenderSTL(part, sink.WithCellSize(0.25))
//
// # JSON Output
//
// [RenderJSON] writes a [Report]; [ParseReport] reads one back, which lets
// the pipeline answer from cache without rebuilding.
//
// # SVG Output
//
// [RenderSVG] draws the side faces left to right as seen walking around the
// tower (left, front, right, back) with the top folded up above the front.
// Additive footprints are filled, subtractive ones outlined.
//
//	marks, _ := plan.Marks(k, d)
//	svg := sink.RenderSVG(d, marks)
package sink
