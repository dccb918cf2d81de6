// Package main is the entry point for the bsplight light compiler.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/bsplight/internal/config"
	"github.com/Faultbox/bsplight/internal/light"
	"github.com/Faultbox/bsplight/internal/logger"
	"github.com/Faultbox/bsplight/pkg/bsp"
	"github.com/Faultbox/bsplight/pkg/vec"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintf(os.Stderr, "usage: bsplight [flags] <entities-file> [output-file]\n")
		os.Exit(1)
	}

	logger.Info("=== bsplight ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	data, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("failed to read entities file", zap.Error(err))
		os.Exit(2)
	}
	level := &bsp.Level{EntitiesText: string(data)}

	out, err := run(level, cfg)
	if err != nil {
		logger.Error("compile error", zap.Error(err))
		os.Exit(2)
	}

	if len(args) == 2 {
		if err := os.WriteFile(args[1], []byte(out), 0644); err != nil {
			logger.Error("failed to write entities file", zap.Error(err))
			os.Exit(2)
		}
		logger.Info("wrote corrected entities", zap.String("path", args[1]))
	} else {
		fmt.Print(out)
	}

	logger.Info("done")
}

// run performs the synthesis and bounce passes and returns the corrected
// entity text with generated lights excluded.
func run(level *bsp.Level, cfg *config.Config) (string, error) {
	synth := light.NewSynthesizer(level, cfg)
	if err := synth.LoadEntities(); err != nil {
		return "", err
	}
	if err := synth.SetupLights(); err != nil {
		return "", err
	}
	logger.Info("synthesis complete",
		zap.Int("lights", len(synth.Lights)),
		zap.Int("suns", len(synth.Suns)))

	if cfg.Bounce.Enabled {
		colors := light.BuildTextureColors(level)
		bouncer := light.NewBouncer(level, cfg, synth.Globals(), synth.Models,
			colors, unlitSampler, nil)
		if err := bouncer.Run(); err != nil {
			return "", err
		}
		logger.Info("bounce complete",
			zap.Int("bounceLights", bouncer.Accumulator().Len()))
	}

	return synth.EntitiesText(), nil
}

// unlitSampler stands in for the direct-light sampler of a full compile
// chain; without lightmap sampling every patch reads as dark.
func unlitSampler(point, normal vec.Vec3) map[int]vec.Vec3 {
	return nil
}
