// Package config describes a tower as a TOML document.
//
// A config holds the tower dimensions and, for each face, the features to
// build on it. [Default] returns the canonical tower; [Load] and [Parse] read
// a file on top of those defaults, so a config only needs to name what it
// changes. [Config.Plan] turns the description into the per-face builders the
// assembly engine runs.
//
// # Example
//
//	name = "slant"
//	font = "bold"
//
//	[dims]
//	length = 25
//	width = 25
//	height = 75
//	thickness = 2.5
//	text_from_top = 10
//
//	[faces.front.text]
//	lines = ["Slant", "3D"]
//	relief = "raised"
//
//	[faces.back.hole]
//	radius = 8
//	treatment = "fillet"
//	size = 2
//	center = { v = 20, from_top = true }
//
//	[faces.top]
//	disabled = true
//
//	[[faces.right.grooves]]
//	height = 25
//	width = 1
//	depth = 2
package config

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/slanttower/pkg/assembly"
	"github.com/matzehuels/slanttower/pkg/cache"
	"github.com/matzehuels/slanttower/pkg/dims"
	errs "github.com/matzehuels/slanttower/pkg/errors"
	"github.com/matzehuels/slanttower/pkg/feature"
	"github.com/matzehuels/slanttower/pkg/fonts"
	"github.com/matzehuels/slanttower/pkg/frame"
)

// Config is a complete tower description.
type Config struct {
	Name string    `toml:"name" json:"name"`
	Dims dims.Spec `toml:"dims" json:"dims"`

	// Font names the typeface of every text feature (see fonts.Names).
	Font string `toml:"font,omitempty" json:"font,omitempty"`

	// MinicubeHeight is carried for reference only. No feature reads it.
	MinicubeHeight float64 `toml:"minicube_height,omitempty" json:"minicube_height,omitempty"`

	Faces Faces `toml:"faces" json:"faces"`
}

// Faces holds one feature set per face.
type Faces struct {
	Front FaceConfig `toml:"front" json:"front"`
	Back  FaceConfig `toml:"back" json:"back"`
	Left  FaceConfig `toml:"left" json:"left"`
	Right FaceConfig `toml:"right" json:"right"`
	Top   FaceConfig `toml:"top" json:"top"`
}

// FaceConfig lists the features of one face. Nil entries are not built.
// Disabled drops every feature of the face, including inherited defaults.
type FaceConfig struct {
	Disabled bool `toml:"disabled,omitempty" json:"disabled,omitempty"`

	Text    *TextConfig    `toml:"text,omitempty" json:"text,omitempty"`
	Hole    *HoleConfig    `toml:"hole,omitempty" json:"hole,omitempty"`
	Grid    *GridConfig    `toml:"grid,omitempty" json:"grid,omitempty"`
	Bumps   *BumpConfig    `toml:"bumps,omitempty" json:"bumps,omitempty"`
	Grooves []GrooveConfig `toml:"grooves,omitempty" json:"grooves,omitempty"`
}

// Empty reports whether the face has no features.
func (f FaceConfig) Empty() bool {
	return f.Disabled || f.Text == nil && f.Hole == nil && f.Grid == nil && f.Bumps == nil && len(f.Grooves) == 0
}

// Kinds names the features the face declares, in build order.
func (f FaceConfig) Kinds() []string {
	if f.Disabled {
		return nil
	}
	var out []string
	if f.Text != nil {
		out = append(out, "text")
	}
	if f.Hole != nil {
		out = append(out, "hole")
	}
	if f.Grid != nil {
		out = append(out, "grid")
	}
	if f.Bumps != nil {
		out = append(out, "bumps")
	}
	for range f.Grooves {
		out = append(out, "groove")
	}
	return out
}

// TextConfig configures a text relief.
type TextConfig struct {
	Lines    []string          `toml:"lines" json:"lines"`
	FontSize float64           `toml:"font_size" json:"font_size"`
	Gap      float64           `toml:"gap" json:"gap"`
	Depth    float64           `toml:"depth" json:"depth"`
	Relief   string            `toml:"relief" json:"relief"`
	Anchor   *feature.Position `toml:"anchor,omitempty" json:"anchor,omitempty"`
}

// HoleConfig configures a blind hole and its rim treatment.
type HoleConfig struct {
	Radius    float64          `toml:"radius" json:"radius"`
	Depth     float64          `toml:"depth,omitempty" json:"depth,omitempty"`
	Center    feature.Position `toml:"center" json:"center"`
	Treatment string           `toml:"treatment" json:"treatment"`
	Size      float64          `toml:"size,omitempty" json:"size,omitempty"`
}

// GridConfig configures a grid of square cutouts.
type GridConfig struct {
	Pitch  float64          `toml:"pitch" json:"pitch"`
	Count  int              `toml:"count" json:"count"`
	Center feature.Position `toml:"center" json:"center"`
	Size   float64          `toml:"size" json:"size"`
	Depth  float64          `toml:"depth" json:"depth"`
}

// BumpConfig configures a grid of spherical bumps.
type BumpConfig struct {
	Pitch  float64          `toml:"pitch" json:"pitch"`
	Count  int              `toml:"count" json:"count"`
	Center feature.Position `toml:"center" json:"center"`
	Radius float64          `toml:"radius" json:"radius"`
	Intent string           `toml:"intent" json:"intent"`
}

// GrooveConfig configures a horizontal groove on a side face.
type GrooveConfig struct {
	Height float64 `toml:"height" json:"height"`
	Width  float64 `toml:"width" json:"width"`
	Depth  float64 `toml:"depth" json:"depth"`
}

// DefaultName is the name of the canonical tower.
const DefaultName = "slant"

// Default returns the canonical tower: raised text on the front, a filleted
// hole on the back, a chamfered hole over a bump grid on the left, engraved
// text over a cutout grid on the right, and a cutout grid on the top.
func Default() *Config {
	return &Config{
		Name:           DefaultName,
		Dims:           dims.DefaultSpec(),
		MinicubeHeight: 20,
		Faces: Faces{
			Front: FaceConfig{Text: defaultText(feature.Raised)},
			Back:  FaceConfig{Hole: defaultHole(feature.TreatFillet)},
			Left: FaceConfig{
				Hole:  defaultHole(feature.TreatChamfer),
				Bumps: &BumpConfig{Pitch: 4, Count: 3, Center: feature.Position{V: 30}, Radius: 1, Intent: string(feature.Add)},
			},
			Right: FaceConfig{
				Text: defaultText(feature.Engraved),
				Grid: defaultGrid(feature.Position{V: 15}),
			},
			Top: FaceConfig{Grid: defaultGrid(feature.Position{})},
		},
	}
}

func defaultText(r feature.Relief) *TextConfig {
	return &TextConfig{Lines: []string{"Slant", "3D"}, FontSize: 10, Gap: 1, Depth: 2, Relief: string(r)}
}

// defaultHole leaves Size unset so the treatment picks its own default even
// when a config only overrides the treatment.
func defaultHole(t feature.Treatment) *HoleConfig {
	return &HoleConfig{Radius: 8, Center: feature.Position{V: 20, FromTop: true}, Treatment: string(t)}
}

func defaultGrid(c feature.Position) *GridConfig {
	return &GridConfig{Pitch: 4, Count: 3, Center: c, Size: 2, Depth: 1}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes a TOML document over the defaults and validates it. Keys
// the config does not know are rejected so typos do not pass silently.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode writes c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// Hash returns a content hash of c, used to key cached artifacts.
func (c *Config) Hash() (string, error) {
	data, err := c.Encode()
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Face returns the feature set of face.
func (c *Config) Face(face frame.Face) (FaceConfig, bool) {
	switch face {
	case frame.Front:
		return c.Faces.Front, true
	case frame.Back:
		return c.Faces.Back, true
	case frame.Left:
		return c.Faces.Left, true
	case frame.Right:
		return c.Faces.Right, true
	case frame.Top:
		return c.Faces.Top, true
	default:
		return FaceConfig{}, false
	}
}

// Validate checks the dimensions and every feature setting that can be
// checked without building geometry. Footprints are checked at build time.
func (c *Config) Validate() error {
	if err := c.Dims.Validate(); err != nil {
		return err
	}
	if _, err := fonts.TTF(c.Font); err != nil {
		return err
	}
	if c.MinicubeHeight < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "minicube_height must not be negative, got %g", c.MinicubeHeight)
	}
	for _, face := range frame.Order {
		fc, _ := c.Face(face)
		if fc.Empty() {
			continue
		}
		features, err := fc.features(face)
		if err != nil {
			return errs.Wrap(errs.GetCode(err), err, "faces.%s", face).At(face.String(), "")
		}
		for _, f := range features {
			if err := f.Validate(); err != nil {
				return errs.Wrap(errs.GetCode(err), err, "faces.%s.%s", face, f.Kind()).At(face.String(), "")
			}
		}
	}
	return nil
}

// FontData returns the TrueType data of the configured font.
func (c *Config) FontData() ([]byte, error) {
	return fonts.TTF(c.Font)
}

// Dimensions returns the validated dimensions.
func (c *Config) Dimensions() (dims.Dimensions, error) {
	return dims.New(c.Dims)
}

// Plan converts the config into per-face builders. Faces without features
// get no builder.
func (c *Config) Plan() (assembly.Plan, error) {
	var builders []feature.Builder
	for _, face := range frame.Order {
		fc, _ := c.Face(face)
		if fc.Empty() {
			continue
		}
		features, err := fc.features(face)
		if err != nil {
			return nil, err
		}
		builders = append(builders, feature.NewFaceBuilder(face, features...))
	}
	return assembly.NewPlan(builders...)
}

// features converts the face config in a fixed order: text, hole, grid,
// bumps, grooves.
func (f FaceConfig) features(face frame.Face) ([]feature.Feature, error) {
	var out []feature.Feature
	if t := f.Text; t != nil {
		relief, err := feature.ParseRelief(t.Relief)
		if err != nil {
			return nil, err
		}
		out = append(out, &feature.TextSpec{
			Lines:    t.Lines,
			FontSize: t.FontSize,
			Gap:      t.Gap,
			Depth:    t.Depth,
			Relief:   relief,
			Anchor:   t.Anchor,
		})
	}
	if h := f.Hole; h != nil {
		treatment, err := feature.ParseTreatment(h.Treatment)
		if err != nil {
			return nil, err
		}
		out = append(out, &feature.HoleSpec{
			Radius:    h.Radius,
			Depth:     h.Depth,
			Center:    h.Center,
			Treatment: treatment,
			Size:      h.Size,
		})
	}
	if g := f.Grid; g != nil {
		out = append(out, &feature.GridCutoutSpec{
			Grid:  squareGrid(g.Pitch, g.Count, g.Center),
			Size:  g.Size,
			Depth: g.Depth,
		})
	}
	if b := f.Bumps; b != nil {
		intent := feature.Add
		if b.Intent != "" {
			r, err := feature.ParseRole(b.Intent)
			if err != nil {
				return nil, err
			}
			intent = r
		}
		out = append(out, &feature.BumpGridSpec{
			Grid:   squareGrid(b.Pitch, b.Count, b.Center),
			Radius: b.Radius,
			Intent: intent,
		})
	}
	if len(f.Grooves) > 0 && !face.Side() {
		return nil, errs.New(errs.ErrCodeInvalidFeature, "grooves are only supported on side faces, not %s", face)
	}
	for _, g := range f.Grooves {
		out = append(out, &feature.GrooveSpec{Height: g.Height, Width: g.Width, Depth: g.Depth})
	}
	return out, nil
}

func squareGrid(pitch float64, count int, c feature.Position) feature.Grid {
	return feature.Grid{PitchX: pitch, PitchY: pitch, CountX: count, CountY: count, Center: c}
}
