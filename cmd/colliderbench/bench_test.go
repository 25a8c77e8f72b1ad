package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.Terrain.Size = 8
	cfg.Props = PropsConfig{Count: 10, Spacing: 2}
	cfg.Queries = QueryConfig{Rays: 200, PointDistances: 50, ColliderDistances: 50, ColliderCasts: 20, MaxDistance: 1}
	cfg.HitMap = HitMapConfig{Resolution: 16, Scale: 2}
	return cfg
}

func TestLoadConfig_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nqueries:\n  rays: 10\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 10, cfg.Queries.Rays)
	assert.Equal(t, DefaultConfig().Queries.PointDistances, cfg.Queries.PointDistances)
	assert.Equal(t, DefaultConfig().Terrain, cfg.Terrain)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 0\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "workers")

	require.NoError(t, os.WriteFile(path, []byte("workers: [\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "unmarshal")
}

func TestBuildScene(t *testing.T) {
	cfg := smallConfig()
	scene, err := BuildScene(cfg)
	require.NoError(t, err)

	compound, ok := scene.Root.Compound()
	require.True(t, ok)
	assert.Equal(t, cfg.Props.Count+1, compound.NumChildren())
	assert.False(t, scene.Bounds.IsEmpty())

	stats := checkLeaves(scene)
	assert.Zero(t, stats.Unresolved)
	// 8x8 terrain cells, plus nested compounds holding three spheres each.
	assert.Greater(t, stats.Hits, int64(cfg.Props.Count))
}

func TestRunQueries(t *testing.T) {
	cfg := smallConfig()
	scene, err := BuildScene(cfg)
	require.NoError(t, err)

	stats, err := RunQueries(context.Background(), scene, cfg)
	require.NoError(t, err)
	require.Len(t, stats, 5)
	byName := map[string]Stats{}
	for _, s := range stats {
		byName[s.Name] = s
		assert.Zero(t, s.Unresolved, s.Name)
	}
	// Every downward ray over the terrain footprint lands on something.
	assert.Equal(t, int64(cfg.Queries.Rays), byName["rays"].Hits)
	assert.Equal(t, cfg.Queries.ColliderCasts, byName["collider_casts"].Queries)
}

func TestRunQueries_Cancelled(t *testing.T) {
	cfg := smallConfig()
	scene, err := BuildScene(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunQueries(ctx, scene, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderHitMap(t *testing.T) {
	cfg := smallConfig()
	scene, err := BuildScene(cfg)
	require.NoError(t, err)

	img := RenderHitMap(scene, cfg.HitMap)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	cfg.HitMap.Path = filepath.Join(t.TempDir(), "hitmap.png")
	require.NoError(t, WriteHitMap(scene, cfg.HitMap))
	info, err := os.Stat(cfg.HitMap.Path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
