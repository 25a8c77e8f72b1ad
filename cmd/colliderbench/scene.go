package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/jakecoffman/physics"
)

// Scene is a terrain mesh with a field of props above it, all under one
// root compound.
type Scene struct {
	Root   *physics.Collider
	Bounds physics.Aabb
	// Footprint bounds the terrain alone. Every vertical line through it
	// crosses the terrain.
	Footprint physics.Aabb
	// Probe is the collider used for distance and cast queries.
	Probe *physics.Collider
}

func terrainHeight(cfg TerrainConfig, x, z float32) float32 {
	return cfg.Amplitude * math32.Sin(x*0.3) * math32.Cos(z*0.2)
}

func buildTerrain(cfg TerrainConfig) (*physics.MeshCollider, error) {
	n := cfg.Size
	vertices := make([]mgl32.Vec3, 0, (n+1)*(n+1))
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			x, z := float32(j)*cfg.Spacing, float32(i)*cfg.Spacing
			vertices = append(vertices, mgl32.Vec3{x, terrainHeight(cfg, x, z), z})
		}
	}
	triangles := make([][3]int, 0, 2*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a := i*(n+1) + j
			b, c, d := a+1, a+n+2, a+n+1
			triangles = append(triangles, [3]int{a, d, c}, [3]int{a, c, b})
		}
	}
	return physics.NewMeshCollider(vertices, triangles, physics.DefaultFilter, physics.DefaultMaterial)
}

// buildProp returns the i-th prop. Props cycle through every leaf type and
// a nested compound.
func buildProp(i int, rng *rand.Rand) (*physics.Collider, error) {
	size := 0.5 + rng.Float32()
	switch i % 5 {
	case 0:
		sphere, err := physics.NewSphereCollider(physics.SphereGeometry{Radius: size}, physics.DefaultFilter, physics.DefaultMaterial)
		if err != nil {
			return nil, err
		}
		return sphere.AsCollider(), nil
	case 1:
		capsule, err := physics.NewCapsuleCollider(physics.CapsuleGeometry{
			Vertex0: mgl32.Vec3{0, -size, 0},
			Vertex1: mgl32.Vec3{0, size, 0},
			Radius:  size / 2,
		}, physics.DefaultFilter, physics.DefaultMaterial)
		if err != nil {
			return nil, err
		}
		return capsule.AsCollider(), nil
	case 2:
		box, err := physics.NewBoxCollider(physics.BoxGeometry{
			Orientation: mgl32.QuatRotate(rng.Float32()*math32.Pi, mgl32.Vec3{0, 1, 0}),
			Size:        mgl32.Vec3{size * 2, size, size * 1.5},
			BevelRadius: 0.05,
		}, physics.DefaultFilter, physics.DefaultMaterial)
		if err != nil {
			return nil, err
		}
		return box.AsCollider(), nil
	case 3:
		points := make([]mgl32.Vec3, 16)
		for p := range points {
			points[p] = mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}.Mul(size)
		}
		hull, err := physics.NewConvexCollider(points, physics.DefaultConvexHullGenerationParameters, physics.DefaultFilter, physics.DefaultMaterial)
		if err != nil {
			return nil, err
		}
		return hull.AsCollider(), nil
	default:
		var children []physics.CompoundChild
		for c := 0; c < 3; c++ {
			sphere, err := physics.NewSphereCollider(physics.SphereGeometry{Radius: size / 2}, physics.DefaultFilter, physics.DefaultMaterial)
			if err != nil {
				return nil, err
			}
			children = append(children, physics.CompoundChild{
				CompoundFromChild: physics.NewTransformTranslate(mgl32.Vec3{float32(c) * size, 0, 0}),
				Collider:          sphere.AsCollider(),
			})
		}
		compound, err := physics.NewCompoundCollider(children)
		if err != nil {
			return nil, err
		}
		return compound.AsCollider(), nil
	}
}

func BuildScene(cfg Config) (*Scene, error) {
	rng := rand.New(rand.NewPCG(cfg.Seed, 0))

	terrain, err := buildTerrain(cfg.Terrain)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	children := []physics.CompoundChild{{CompoundFromChild: physics.NewTransformIdentity(), Collider: terrain.AsCollider()}}

	extent := float32(cfg.Terrain.Size) * cfg.Terrain.Spacing
	perRow := int(extent/cfg.Props.Spacing) + 1
	for i := 0; i < cfg.Props.Count; i++ {
		prop, err := buildProp(i, rng)
		if err != nil {
			return nil, fmt.Errorf("prop %d: %w", i, err)
		}
		x := float32(i%perRow) * cfg.Props.Spacing
		z := float32(i/perRow) * cfg.Props.Spacing
		position := mgl32.Vec3{x, terrainHeight(cfg.Terrain, x, z) + cfg.Terrain.Amplitude + 2, z}
		children = append(children, physics.CompoundChild{
			CompoundFromChild: physics.NewRigidTransform(mgl32.QuatRotate(rng.Float32()*math32.Pi, mgl32.Vec3{0, 1, 0}), position),
			Collider:          prop,
		})
	}

	root, err := physics.NewCompoundCollider(children)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	probe, err := physics.NewSphereCollider(physics.SphereGeometry{Radius: 0.5}, physics.DefaultFilter, physics.DefaultMaterial)
	if err != nil {
		return nil, err
	}
	return &Scene{
		Root:      root.AsCollider(),
		Bounds:    root.AsCollider().CalculateAabb(physics.NewTransformIdentity()),
		Footprint: terrain.AsCollider().CalculateAabb(physics.NewTransformIdentity()),
		Probe:     probe.AsCollider(),
	}, nil
}

// randomAbove picks a point over the terrain footprint, height above the top of the scene.
func (s *Scene) randomAbove(rng *rand.Rand, height float32) mgl32.Vec3 {
	return mgl32.Vec3{
		s.Footprint.Min[0] + rng.Float32()*(s.Footprint.Max[0]-s.Footprint.Min[0]),
		s.Bounds.Max[1] + height,
		s.Footprint.Min[2] + rng.Float32()*(s.Footprint.Max[2]-s.Footprint.Min[2]),
	}
}

// randomInside picks a point inside the scene bounds.
func (s *Scene) randomInside(rng *rand.Rand) mgl32.Vec3 {
	var p mgl32.Vec3
	for i := range p {
		p[i] = s.Bounds.Min[i] + rng.Float32()*(s.Bounds.Max[i]-s.Bounds.Min[i])
	}
	return p
}
