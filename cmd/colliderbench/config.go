package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Seed    uint64        `yaml:"seed"`
	Workers int           `yaml:"workers"`
	Terrain TerrainConfig `yaml:"terrain"`
	Props   PropsConfig   `yaml:"props"`
	Queries QueryConfig   `yaml:"queries"`
	HitMap  HitMapConfig  `yaml:"hit_map"`
}

// TerrainConfig describes a square height field of Size x Size cells.
type TerrainConfig struct {
	Size      int     `yaml:"size"`
	Spacing   float32 `yaml:"spacing"`
	Amplitude float32 `yaml:"amplitude"`
}

type PropsConfig struct {
	Count int `yaml:"count"`
	// Rows of props are spaced this far apart.
	Spacing float32 `yaml:"spacing"`
}

type QueryConfig struct {
	Rays              int     `yaml:"rays"`
	PointDistances    int     `yaml:"point_distances"`
	ColliderDistances int     `yaml:"collider_distances"`
	ColliderCasts     int     `yaml:"collider_casts"`
	MaxDistance       float32 `yaml:"max_distance"`
}

type HitMapConfig struct {
	// Path of the PNG to write. Empty disables the hit map.
	Path       string `yaml:"path"`
	Resolution int    `yaml:"resolution"`
	Scale      int    `yaml:"scale"`
}

func DefaultConfig() Config {
	return Config{
		Seed:    1,
		Workers: 4,
		Terrain: TerrainConfig{Size: 64, Spacing: 1, Amplitude: 3},
		Props:   PropsConfig{Count: 40, Spacing: 6},
		Queries: QueryConfig{
			Rays:              100_000,
			PointDistances:    20_000,
			ColliderDistances: 10_000,
			ColliderCasts:     5_000,
			MaxDistance:       2,
		},
		HitMap: HitMapConfig{Resolution: 128, Scale: 4},
	}
}

// LoadConfig reads filename over the defaults, so a config only needs the
// fields it changes.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("colliderbench: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("colliderbench: unmarshal %s: %w", filename, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("colliderbench: workers must be positive, got %d", c.Workers)
	case c.Terrain.Size < 1 || c.Terrain.Spacing <= 0:
		return fmt.Errorf("colliderbench: terrain needs a positive size and spacing")
	case c.Props.Count < 0:
		return fmt.Errorf("colliderbench: negative prop count %d", c.Props.Count)
	case c.Props.Count > 0 && c.Props.Spacing <= 0:
		return fmt.Errorf("colliderbench: props need a positive spacing")
	case c.Queries.MaxDistance < 0:
		return fmt.Errorf("colliderbench: negative max distance %v", c.Queries.MaxDistance)
	case c.HitMap.Path != "" && (c.HitMap.Resolution < 1 || c.HitMap.Scale < 1):
		return fmt.Errorf("colliderbench: hit map needs a positive resolution and scale")
	}
	return nil
}
