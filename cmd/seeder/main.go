package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"circuit_travel/internal/adapters/observability"
	redisad "circuit_travel/internal/adapters/redis"
	"circuit_travel/internal/app"
	"circuit_travel/internal/shared"
	mysqlrepo "circuit_travel/internal/storage/mysql"
)

// seedUnit groups one circuit with the homestays and itineraries that
// hang off it; the circuitId fields inside children are filled in after
// the circuit row exists.
type seedUnit struct {
	Circuit     app.CreateCircuitInput     `json:"circuit"`
	Homestays   []app.CreateHomestayInput  `json:"homestays"`
	Itineraries []app.CreateItineraryInput `json:"itineraries"`
}

type seedFile struct {
	Circuits []seedUnit `json:"circuits"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("read seed file failed")
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	cmd := app.NewCommandService(repo, repo, repo, repo, cache)

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, unit := range seed.Circuits {
		unit := unit

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(u seedUnit) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := seedCircuit(ctx, cmd, u); err != nil {
				log.Warn().Str("circuit", u.Circuit.Name).Err(err).Msg("seed failed")
				return
			}
			log.Info().Str("circuit", u.Circuit.Name).Msg("seed ok")
		}(unit)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}

func seedCircuit(ctx context.Context, cmd *app.CommandService, u seedUnit) error {
	c, err := cmd.CreateCircuit(ctx, u.Circuit)
	if err != nil {
		return err
	}
	for _, h := range u.Homestays {
		h.CircuitID = c.ID.String()
		if _, err := cmd.CreateHomestay(ctx, h); err != nil {
			return err
		}
	}
	for _, it := range u.Itineraries {
		it.CircuitID = c.ID.String()
		if _, err := cmd.CreateItinerary(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
