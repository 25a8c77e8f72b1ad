// Command colliderbench builds a terrain and prop scene and times ray casts,
// distance queries and collider casts against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/profile"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file; defaults are used when empty")
		profileKind = flag.String("profile", "", "write a cpu or mem profile")
		workers     = flag.Int("workers", 0, "override the number of query goroutines")
		hitMap      = flag.String("hitmap", "", "override the hit map output path")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	switch *profileKind {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown profile %q\n", *profileKind)
		os.Exit(2)
	}

	if err := run(*configPath, *workers, *hitMap); err != nil {
		slog.Error("colliderbench failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, workers int, hitMap string) error {
	cfg := DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = LoadConfig(configPath); err != nil {
			return err
		}
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if hitMap != "" {
		cfg.HitMap.Path = hitMap
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	scene, err := BuildScene(cfg)
	if err != nil {
		return err
	}
	slog.Info("scene built",
		"collider", scene.Root,
		"key_bits", scene.Root.NumColliderKeyBits(),
		"memory", scene.Root.MemorySize(),
		"bounds_min", scene.Bounds.Min,
		"bounds_max", scene.Bounds.Max,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := RunQueries(ctx, scene, cfg)
	for _, s := range stats {
		slog.Info(s.Name, "stats", s)
		if s.Unresolved > 0 {
			slog.Warn("hits with unresolvable collider keys", "workload", s.Name, "count", s.Unresolved)
		}
	}
	if err != nil {
		return err
	}

	if cfg.HitMap.Path != "" {
		if err := WriteHitMap(scene, cfg.HitMap); err != nil {
			return err
		}
		slog.Info("hit map written", "path", cfg.HitMap.Path)
	}
	return nil
}
