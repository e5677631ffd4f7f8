package app

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

func InitLogger() {
	logLevel := strings.ToLower(Config.Logger.Level)
	log.Debug("[LOGGER] Initializing logger with level: ", logLevel)

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Warn("[LOGGER] Unknown level ", Config.Logger.Level, ", defaulting to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	log.Info("[LOGGER] Logger initialized with level: ", level.String())
}
