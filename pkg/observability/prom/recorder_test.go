package prom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slanttower/pkg/observability"
)

func TestRecorderCountsEvents(t *testing.T) {
	ctx := context.Background()
	reg := prom.NewRegistry()
	r := NewRecorder(reg)

	r.OnBuildStart(ctx, "b1")
	r.OnBundle(ctx, "right", 0, 2, time.Millisecond, nil)
	r.OnBoolean(ctx, "right", "subtract", time.Millisecond, nil)
	r.OnBoolean(ctx, "back", "subtract", time.Millisecond, errors.New("boom"))
	r.OnBuildComplete(ctx, "b1", 46000, time.Second, nil)
	r.OnBuildComplete(ctx, "b2", 0, time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.builds.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.builds.WithLabelValues("error")))
	assert.Equal(t, 46000.0, testutil.ToFloat64(r.partVolume))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.bundleSolids.WithLabelValues("right", "subtract")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.booleanFailures.WithLabelValues("back", "subtract")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.booleanFailures.WithLabelValues("right", "subtract")))

	r.OnExportStart(ctx, "stl")
	r.OnExportComplete(ctx, "stl", 2048, time.Millisecond, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.exports.WithLabelValues("stl", "success")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(r.exportBytes.WithLabelValues("stl")))

	r.OnCacheHit(ctx, "artifact")
	r.OnCacheMiss(ctx, "artifact")
	r.OnCacheMiss(ctx, "artifact")
	r.OnCacheSet(ctx, "artifact", 10)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheRequests.WithLabelValues("artifact", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheRequests.WithLabelValues("artifact", "miss")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.cacheBytes.WithLabelValues("artifact")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	r := NewRecorder(nil)
	r.Install()
	assert.Same(t, r, observability.Build())
	assert.Same(t, r, observability.Export())
	assert.Same(t, r, observability.Cache())
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg)
	r.OnBuildComplete(context.Background(), "b", 1, time.Second, nil)

	path := filepath.Join(t.TempDir(), "slanttower.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `slanttower_builds_total{outcome="success"} 1`)
}
