package utils

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogging Configure the standard logrus logger from the config
func SetupLogging(config *Config) {
	level, err := log.ParseLevel(config.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if config.Server.Debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if config.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
