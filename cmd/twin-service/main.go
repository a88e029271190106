package main

import (
	"flag"
	"os"

	"github.com/gametwin/gaming-twin/server/internal/config"
	"github.com/gametwin/gaming-twin/server/internal/logger"
	"github.com/gametwin/gaming-twin/server/twinservice"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override BUILD_TARGET (local, cloud-dev, cloud)")
	flag.Parse()

	log := logger.New("twin-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *buildTarget != "" {
		cfg.BuildTarget = *buildTarget
		cfg.DBDriver = "auto"
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid build-target override")
		}
	}

	if err := twinservice.RunWithConfig(cfg); err != nil {
		os.Exit(1)
	}
}
