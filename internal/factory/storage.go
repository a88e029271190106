package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gametwin/gaming-twin/server/internal/config"
	storepkg "github.com/gametwin/gaming-twin/server/internal/store"
	storemem "github.com/gametwin/gaming-twin/server/internal/store/memory"
	storepg "github.com/gametwin/gaming-twin/server/internal/store/postgres"
	storelite "github.com/gametwin/gaming-twin/server/internal/store/sqlite"
)

// NewStore constructs the store.Store selected by cfg.DBDriver.
func NewStore(cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("GAMING_TWIN_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "postgres").Msg("store opened")
		return storepg.NewWithDB(db), nil

	case "sqlite":
		db, err := storelite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("store opened")
		return storelite.NewWithDB(db), nil

	case "memory":
		log.Info().Str("driver", "memory").Msg("store opened")
		return storemem.New(), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
