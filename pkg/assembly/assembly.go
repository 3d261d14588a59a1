// Package assembly combines per-face feature bundles into the finished tower.
//
// # Algorithm
//
// The engine builds the base box (Length x Width x Height, centered in X and
// Y, base at Z = 0), runs the builder of every face in [frame.Order], and
// folds the bundles into the part in two passes:
//
//  1. part = base ∪ add(front) ∪ add(back) ∪ ... ∪ add(top)
//  2. part = part − sub(front) − sub(back) − ... − sub(top)
//
// Every union finishes before the first subtraction, so a subtractive feature
// removes material contributed by any additive one it overlaps, whichever
// face that came from. Because (A − B) − C = A − (B ∪ C), folding the
// subtractions face by face equals subtracting the union of all of them,
// while keeping each step attributable to a single face.
//
// A face with no builder, or whose builder returns an empty bundle, leaves
// the part unchanged.
//
// # Errors
//
// Kernel failures during folding are reported as DEGENERATE_GEOMETRY errors
// carrying the face and role ("add" or "subtract") being combined. Builder
// errors carry the face and keep their own code. No part is returned on
// failure.
package assembly

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/slanttower/pkg/dims"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/feature"
	"github.com/matzehuels/slanttower/pkg/frame"
	"github.com/matzehuels/slanttower/pkg/geom"
	"github.com/matzehuels/slanttower/pkg/kernel"
	"github.com/matzehuels/slanttower/pkg/observability"
)

// Plan maps faces to their builders. Faces without a builder contribute
// nothing.
type Plan map[frame.Face]feature.Builder

// NewPlan indexes builders by face. Two builders for one face is an error.
func NewPlan(builders ...feature.Builder) (Plan, error) {
	p := make(Plan, len(builders))
	for _, b := range builders {
		if b == nil {
			continue
		}
		if _, dup := p[b.Face()]; dup {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "more than one builder for the %s face", b.Face())
		}
		p[b.Face()] = b
	}
	return p, nil
}

func (p Plan) validate() error {
	for face, b := range p {
		if !face.Valid() {
			return errs.New(errs.ErrCodeInvalidFace, "plan has a builder for %s", face)
		}
		if b != nil && b.Face() != face {
			return errs.New(errs.ErrCodeInvalidConfig, "builder for %s registered under %s", b.Face(), face)
		}
	}
	return nil
}

// Marks collects the footprints of every builder that reports them, keyed
// by face. Builders are not run.
func (p Plan) Marks(k kernel.Kernel, d dims.Dimensions) (map[frame.Face][]feature.Mark, error) {
	out := make(map[frame.Face][]feature.Mark, len(p))
	for _, face := range frame.Order {
		m, ok := p[face].(feature.Marker)
		if !ok {
			continue
		}
		marks, err := m.Marks(k, d)
		if err != nil {
			return nil, err
		}
		out[face] = marks
	}
	return out, nil
}

// FaceSummary counts the solids a face contributed.
type FaceSummary struct {
	Face     frame.Face `json:"face"`
	Add      int        `json:"add"`
	Subtract int        `json:"subtract"`
}

// Part is an assembled tower.
type Part struct {
	// ID identifies this build.
	ID string

	// Solid is the final geometry.
	Solid kernel.Solid

	// Dims are the dimensions the part was built from.
	Dims dims.Dimensions

	// Envelope is the base box. Features change surface detail but never
	// the envelope.
	Envelope geom.Box

	// Bounds encloses the solid, including raised reliefs.
	Bounds geom.Box

	// Volume of the solid in cubic millimetres.
	Volume float64

	// Faces lists each face's contribution in build order.
	Faces []FaceSummary

	// Duration is the wall time of the build.
	Duration time.Duration
}

// Engine assembles towers from a plan.
type Engine struct {
	kernel   kernel.Kernel
	plan     Plan
	logger   *log.Logger
	parallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for build step tracing.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithParallelBuilders runs the face builders concurrently. Boolean folding
// stays sequential in face order.
func WithParallelBuilders(on bool) Option {
	return func(e *Engine) { e.parallel = on }
}

// New creates an engine.
func New(k kernel.Kernel, plan Plan, opts ...Option) *Engine {
	e := &Engine{
		kernel: k,
		plan:   plan,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build assembles the tower described by d.
func (e *Engine) Build(ctx context.Context, d dims.Dimensions) (part *Part, err error) {
	start := time.Now()
	id := uuid.NewString()
	hooks := observability.Build()
	hooks.OnBuildStart(ctx, id)
	defer func() {
		vol := 0.0
		if part != nil {
			vol = part.Volume
		}
		hooks.OnBuildComplete(ctx, id, vol, time.Since(start), err)
	}()

	if !d.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidDimension, "dimensions were not validated")
	}
	if err := e.plan.validate(); err != nil {
		return nil, err
	}

	base, err := e.kernel.Box(
		geom.V3(d.Length(), d.Width(), d.Height()),
		kernel.Align3{X: kernel.AlignCenter, Y: kernel.AlignCenter, Z: kernel.AlignMin},
	)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDegenerateGeometry, err, "base box %s", d)
	}
	e.logger.Debug("base box", "dims", d.String(), "build", id)

	bundles, err := e.bundles(ctx, d)
	if err != nil {
		return nil, err
	}

	acc := base
	for i, face := range frame.Order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		adds := bundles[i].Add
		if len(adds) == 0 {
			continue
		}
		acc, err = e.fold(ctx, face, feature.Add, func() (kernel.Solid, error) {
			return e.kernel.Union(append([]kernel.Solid{acc}, adds...)...)
		})
		if err != nil {
			return nil, err
		}
	}

	// cuts records the part after each face's subtraction so an empty
	// result can be traced to the face that emptied it.
	type cutStep struct {
		face  frame.Face
		after kernel.Solid
	}
	var cuts []cutStep
	for i, face := range frame.Order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		subs := bundles[i].Subtract
		if len(subs) == 0 {
			continue
		}
		acc, err = e.fold(ctx, face, feature.Subtract, func() (kernel.Solid, error) {
			cut, err := e.kernel.Union(subs...)
			if err != nil {
				return nil, err
			}
			return e.kernel.Difference(acc, cut)
		})
		if err != nil {
			return nil, err
		}
		cuts = append(cuts, cutStep{face: face, after: acc})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vol := e.kernel.Volume(acc)
	if !(vol > 0) {
		ge := errs.New(errs.ErrCodeDegenerateGeometry, "assembled part has volume %g", vol)
		for _, c := range cuts {
			if !(e.kernel.Volume(c.after) > 0) {
				ge.At(c.face.String(), feature.Subtract)
				break
			}
		}
		return nil, ge
	}

	part = &Part{
		ID:       id,
		Solid:    acc,
		Dims:     d,
		Envelope: base.Bounds(),
		Bounds:   acc.Bounds(),
		Volume:   vol,
		Faces:    make([]FaceSummary, len(frame.Order)),
		Duration: time.Since(start),
	}
	for i, face := range frame.Order {
		part.Faces[i] = FaceSummary{Face: face, Add: len(bundles[i].Add), Subtract: len(bundles[i].Subtract)}
	}
	e.logger.Debug("assembled part", "build", id, "volume", vol, "duration", part.Duration)
	return part, nil
}

// fold runs one boolean step and attributes failures to face and role.
func (e *Engine) fold(ctx context.Context, face frame.Face, role feature.Role, step func() (kernel.Solid, error)) (kernel.Solid, error) {
	start := time.Now()
	s, err := step()
	if err == nil && (s == nil || s.Bounds().Empty()) {
		err = kernel.ErrDegenerate
	}
	observability.Build().OnBoolean(ctx, face.String(), string(role), time.Since(start), err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDegenerateGeometry, err, "combine %s solids", role).At(face.String(), role)
	}
	e.logger.Debug("combined bundle", "face", face, "role", role, "duration", time.Since(start))
	return s, nil
}

// bundles runs every face builder and returns the bundles in frame.Order.
func (e *Engine) bundles(ctx context.Context, d dims.Dimensions) ([]feature.Bundle, error) {
	out := make([]feature.Bundle, len(frame.Order))
	run := func(i int, face frame.Face) error {
		b, ok := e.plan[face]
		if !ok || b == nil {
			return nil
		}
		start := time.Now()
		bundle, err := b.Build(e.kernel, d)
		observability.Build().OnBundle(ctx, face.String(), len(bundle.Add), len(bundle.Subtract), time.Since(start), err)
		if err != nil {
			if _, _, ok := errs.Attribution(err); ok {
				return err
			}
			code := errs.GetCode(err)
			if code == "" {
				code = errs.ErrCodeDegenerateGeometry
			}
			return errs.Wrap(code, err, "build face").At(face.String(), "")
		}
		e.logger.Debug("built bundle", "face", face, "add", len(bundle.Add), "subtract", len(bundle.Subtract))
		out[i] = bundle
		return nil
	}

	if !e.parallel {
		for i, face := range frame.Order {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := run(i, face); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, face := range frame.Order {
		i, face := i, face
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return run(i, face)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
