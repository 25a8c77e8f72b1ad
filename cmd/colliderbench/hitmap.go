package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/bits"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"

	"github.com/jakecoffman/physics"
)

// RenderHitMap casts a grid of rays straight down over the terrain. Each pixel
// is shaded by the height of the closest hit; misses are left dark.
func RenderHitMap(scene *Scene, cfg HitMapConfig) *image.RGBA {
	res := cfg.Resolution
	small := image.NewRGBA(image.Rect(0, 0, res, res))
	draw.Draw(small, small.Bounds(), image.NewUniform(colornames.Midnightblue), image.Point{}, draw.Src)

	minY, maxY := scene.Bounds.Min[1], scene.Bounds.Max[1]
	size := scene.Footprint.Extents()
	for py := 0; py < res; py++ {
		for px := 0; px < res; px++ {
			x := scene.Footprint.Min[0] + (float32(px)+0.5)/float32(res)*size[0]
			z := scene.Footprint.Min[2] + (float32(py)+0.5)/float32(res)*size[2]
			hit, ok := scene.Root.CastRayClosest(physics.RaycastInput{
				Start:  mgl32.Vec3{x, maxY + 1, z},
				End:    mgl32.Vec3{x, minY - 1, z},
				Filter: physics.DefaultFilter,
			})
			if !ok {
				continue
			}
			t := physics.Clamp01((hit.Position[1] - minY) / (maxY - minY))
			small.Set(px, py, shade(t, hit.ColliderKey))
		}
	}

	big := image.NewRGBA(image.Rect(0, 0, res*cfg.Scale, res*cfg.Scale))
	draw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), draw.Src, nil)
	return big
}

// shade blends from low to high by t. Keys with odd parity get a warmer top
// color so neighbouring leaves stay apart.
func shade(t float32, key physics.ColliderKey) color.RGBA {
	low, high := colornames.Darkgreen, colornames.Wheat
	if bits.OnesCount32(key.Value)%2 == 1 {
		high = colornames.Lightsalmon
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float32(a) + (float32(b)-float32(a))*t)
	}
	return color.RGBA{mix(low.R, high.R), mix(low.G, high.G), mix(low.B, high.B), 0xff}
}

func WriteHitMap(scene *Scene, cfg HitMapConfig) error {
	f, err := os.Create(cfg.Path)
	if err != nil {
		return fmt.Errorf("colliderbench: create %s: %w", cfg.Path, err)
	}
	defer f.Close()
	if err := png.Encode(f, RenderHitMap(scene, cfg)); err != nil {
		return fmt.Errorf("colliderbench: encode %s: %w", cfg.Path, err)
	}
	return f.Close()
}
