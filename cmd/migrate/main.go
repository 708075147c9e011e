package main

import (
	"errors"
	"os"

	"roombook/config"
	"roombook/helper"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
)

const usage = "usage: migrate up|down|drop|step-up"

func main() {
	logger.InitLogger()

	if len(os.Args) != 2 {
		log.Fatal().Msg(usage)
	}

	cfg := config.Get()
	logger.SetLogLevel(cfg)

	action := os.Args[1]

	if err := helper.Runner(cfg, action); err != nil {
		if errors.Is(err, helper.ErrUnknownAction) {
			log.Fatal().Str("action", action).Msg(usage)
		}

		log.Fatal().Err(err).Str("action", action).Msg("Migration failed")
	}
}
