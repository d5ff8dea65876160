package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/always-cache/respcache"
	"github.com/always-cache/respcache/cache"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	portFlag           int
	originFlag         string
	hostFlag           string
	dbFilenameFlag     string
	configFilenameFlag string
	verbosityTraceFlag bool
	logFilenameFlag    string
	purgeIntervalFlag  time.Duration

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&originFlag, "origin", "", "Origin URL to proxy to")
	flag.StringVar(&hostFlag, "host", "", "Hostname of origin (if different from the origin URL)")
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&dbFilenameFlag, "db", "cache.db", "Cache DB file name (use 'memory' for in-memory db)")
	flag.StringVar(&configFilenameFlag, "config", "", "YAML config file (flags override its values)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")
	flag.DurationVar(&purgeIntervalFlag, "purge-interval", 10*time.Minute, "Interval for removing expired entries from the cache db (0 disables)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	config, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	// set up sqlite memory provider
	dbFilename := config.DB
	if dbFilename == "memory" {
		dbFilename = ""
	}
	store, err := cache.NewSQLiteCache(dbFilename)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not open cache db")
	}
	defer store.Close()
	if purgeIntervalFlag > 0 {
		go purgeExpired(store, purgeIntervalFlag)
	}

	cacheConfig := respcache.Config{
		Cache:      store,
		OriginURL:  config.OriginURL(),
		OriginHost: config.Host,
		Logger:     &log.Logger,
		Rules:      config.Rules,
	}
	rcache := respcache.CreateCache(cacheConfig)
	log.Info().Msgf("Proxying port %v to %s (with hostname '%s')", config.Port, cacheConfig.OriginURL.String(), cacheConfig.OriginHost)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", config.Port), rcache.Router()); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

type expiredPurger interface {
	PurgeExpired() error
}

// purgeExpired removes expired entries from the store every interval.
// Lookups already skip them, this only keeps the db from growing.
func purgeExpired(store expiredPurger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		purgeOnce(store)
	}
}

func purgeOnce(store expiredPurger) {
	if err := store.PurgeExpired(); err != nil {
		log.Error().Err(err).Msg("Could not purge expired cache entries")
		return
	}
	log.Trace().Msg("Purged expired cache entries")
}

// loadConfig reads the config file if given and applies the flags that were
// set on the command line on top of it.
func loadConfig() (Config, error) {
	config := Config{Port: portFlag, DB: dbFilenameFlag}
	if configFilenameFlag != "" {
		fileConfig, err := getConfig(configFilenameFlag)
		if err != nil {
			return config, err
		}
		config = mergeConfig(config, fileConfig)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "origin":
			config.Origin = originFlag
		case "host":
			config.Host = hostFlag
		case "port":
			config.Port = portFlag
		case "db":
			config.DB = dbFilenameFlag
		}
	})
	return config, nil
}

// mergeConfig returns defaults with the non-zero values of file applied.
func mergeConfig(defaults, file Config) Config {
	config := defaults
	if file.Origin != "" {
		config.Origin = file.Origin
	}
	if file.Host != "" {
		config.Host = file.Host
	}
	if file.Port != 0 {
		config.Port = file.Port
	}
	if file.DB != "" {
		config.DB = file.DB
	}
	config.Rules = file.Rules
	return config
}
