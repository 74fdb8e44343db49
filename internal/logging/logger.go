package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/config"
)

// NewLogger creates a structured zerolog.Logger tagged with the service
// name and the orchestrator cluster it drives.
func NewLogger(cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(os.Stdout).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	if cfg.AWSRegion != "" {
		ctx = ctx.Str("region", cfg.AWSRegion)
	}
	if cfg.ECSCluster != "" {
		ctx = ctx.Str("cluster", cfg.ECSCluster)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return ctx.Logger().Level(level)
}
