package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/jakecoffman/physics"
)

// Stats counts the outcome of one workload.
type Stats struct {
	Name    string
	Queries int
	Hits    int64
	// Unresolved counts hits whose collider key did not lead back to a leaf.
	Unresolved int64
	Elapsed    time.Duration
}

func (s Stats) LogValue() slog.Value {
	perQuery := time.Duration(0)
	if s.Queries > 0 {
		perQuery = s.Elapsed / time.Duration(s.Queries)
	}
	return slog.GroupValue(
		slog.Int("queries", s.Queries),
		slog.Int64("hits", s.Hits),
		slog.Int64("unresolved", s.Unresolved),
		slog.Duration("elapsed", s.Elapsed),
		slog.Duration("per_query", perQuery),
	)
}

// query runs one query with rng and reports whether it hit and, for hits,
// the key of the leaf it hit.
type query func(rng *rand.Rand) (physics.ColliderKey, bool)

// runWorkload spreads n queries over workers. Every hit key is resolved
// against the scene root.
func runWorkload(ctx context.Context, name string, scene *Scene, cfg Config, n int, q query) (Stats, error) {
	var hits, unresolved atomic.Int64
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		count := n / cfg.Workers
		if w < n%cfg.Workers {
			count++
		}
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(w)+1))
		g.Go(func() error {
			for i := 0; i < count; i++ {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				key, ok := q(rng)
				if !ok {
					continue
				}
				hits.Add(1)
				if _, ok := scene.Root.GetLeaf(key); !ok {
					unresolved.Add(1)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	return Stats{
		Name:       name,
		Queries:    n,
		Hits:       hits.Load(),
		Unresolved: unresolved.Load(),
		Elapsed:    time.Since(start),
	}, err
}

func rayQuery(scene *Scene) query {
	return func(rng *rand.Rand) (physics.ColliderKey, bool) {
		start := scene.randomAbove(rng, 10)
		end := start.Sub(mgl32.Vec3{0, scene.Bounds.Max[1] - scene.Bounds.Min[1] + 20, 0})
		hit, ok := scene.Root.CastRayClosest(physics.RaycastInput{Start: start, End: end, Filter: physics.DefaultFilter})
		return hit.ColliderKey, ok
	}
}

func pointDistanceQuery(scene *Scene, maxDistance float32) query {
	return func(rng *rand.Rand) (physics.ColliderKey, bool) {
		hit, ok := scene.Root.CalculateDistanceClosest(physics.PointDistanceInput{
			Position:    scene.randomInside(rng),
			MaxDistance: maxDistance,
			Filter:      physics.DefaultFilter,
		})
		return hit.ColliderKey, ok
	}
}

func colliderDistanceQuery(scene *Scene, maxDistance float32) query {
	return func(rng *rand.Rand) (physics.ColliderKey, bool) {
		hit, ok := scene.Root.CalculateColliderDistanceClosest(physics.ColliderDistanceInput{
			Collider:    scene.Probe,
			Transform:   physics.NewTransformTranslate(scene.randomInside(rng)),
			MaxDistance: maxDistance,
		})
		return hit.ColliderKey, ok
	}
}

func colliderCastQuery(scene *Scene) query {
	return func(rng *rand.Rand) (physics.ColliderKey, bool) {
		start := scene.randomAbove(rng, 2)
		end := mgl32.Vec3{start[0], scene.Bounds.Min[1] - 2, start[2]}
		hit, ok := scene.Root.CastColliderClosest(physics.ColliderCastInput{
			Collider:    scene.Probe,
			Orientation: mgl32.QuatIdent(),
			Start:       start,
			End:         end,
		})
		return hit.ColliderKey, ok
	}
}

// checkLeaves enumerates every leaf of the scene and resolves each key back.
func checkLeaves(scene *Scene) Stats {
	start := time.Now()
	leaves := physics.CollectLeaves(scene.Root, physics.NewTransformIdentity())
	stats := Stats{Name: "leaves", Queries: len(leaves)}
	for _, leaf := range leaves {
		view, ok := physics.GetLeafCollider(scene.Root, physics.NewTransformIdentity(), leaf.Key)
		if !ok || view.Collider().Type() != leaf.Collider.Collider().Type() {
			stats.Unresolved++
			continue
		}
		stats.Hits++
	}
	stats.Elapsed = time.Since(start)
	return stats
}

func RunQueries(ctx context.Context, scene *Scene, cfg Config) ([]Stats, error) {
	workloads := []struct {
		name string
		n    int
		q    query
	}{
		{"rays", cfg.Queries.Rays, rayQuery(scene)},
		{"point_distances", cfg.Queries.PointDistances, pointDistanceQuery(scene, cfg.Queries.MaxDistance)},
		{"collider_distances", cfg.Queries.ColliderDistances, colliderDistanceQuery(scene, cfg.Queries.MaxDistance)},
		{"collider_casts", cfg.Queries.ColliderCasts, colliderCastQuery(scene)},
	}

	all := []Stats{checkLeaves(scene)}
	for _, w := range workloads {
		stats, err := runWorkload(ctx, w.name, scene, cfg, w.n, w.q)
		if err != nil {
			return all, err
		}
		all = append(all, stats)
	}
	return all, nil
}
