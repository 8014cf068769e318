// Package main runs the accounts API: accounts with their companies, sub-accounts and addresses, plus cashout events.
package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/accounts-api/cmd/httpserver"
	"github.com/go-petr/accounts-api/internal/accountservice"
	"github.com/go-petr/accounts-api/internal/middleware"
	"github.com/go-petr/accounts-api/pkg/configpkg"
	"github.com/go-petr/accounts-api/pkg/dbpkg"
	"github.com/go-petr/accounts-api/pkg/eventspkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	if config.MigrationURL != "" {
		if err := dbpkg.Migrate(config.MigrationURL, config.DBSource); err != nil {
			logger.Fatal().Err(err).Msg("cannot migrate database")
		}

		logger.Info().Msg("database migrated")
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	var publisher accountservice.Publisher

	if config.RedisAddress != "" {
		rdb, err := eventspkg.NewClient(context.Background(), config.RedisAddress, config.RedisPassword, config.RedisDB)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to redis")
		}

		publisher = eventspkg.NewPublisher(rdb, config.EventStream)
	}

	server, err := httpserver.New(db, logger, config, publisher)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.ServerAddress).Msg("ACCOUNTS API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
