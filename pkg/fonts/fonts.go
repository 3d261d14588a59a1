// Package fonts names the typefaces text features can be cut in.
//
// The fonts ship with golang.org/x/image and are compiled into the binary,
// so a config renders the same everywhere without system fonts.
package fonts

import (
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	errs "github.com/matzehuels/slanttower/pkg/errors"
)

// Default is the font used when a config names none.
const Default = "regular"

var registry = map[string][]byte{
	"regular":   goregular.TTF,
	"bold":      gobold.TTF,
	"mono":      gomono.TTF,
	"mono-bold": gomonobold.TTF,
}

// TTF returns the TrueType data of the named font. An empty name selects
// [Default].
func TTF(name string) ([]byte, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default
	}
	data, ok := registry[name]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidFeature, "unknown font %q (must be one of: %s)", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names lists the available fonts in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
