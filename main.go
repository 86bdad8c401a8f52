package main

import (
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	v1 "github.com/moneta-app/backend/internal/controllers/v1"
	"github.com/moneta-app/backend/internal/events"
	"github.com/moneta-app/backend/internal/models"
	"github.com/moneta-app/backend/internal/router"
	"github.com/moneta-app/backend/internal/seed"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration from a .env file if there is one
	_ = godotenv.Load()

	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	dbPath, ok := os.LookupEnv("DB_PATH")
	if !ok {
		dbPath = filepath.Join("data", "moneta.db")
	}

	err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	err = models.Connect(dbPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if os.Getenv("SEED") != "false" {
		err = seed.Apply(models.DB)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
	}

	// The ledger event feed is only active when a broker is configured
	if amqpURL, ok := os.LookupEnv("AMQP_URL"); ok {
		publisher, err := events.NewPublisher(amqpURL)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
		defer publisher.Close()

		v1.Publisher = publisher
	}

	apiURL, ok := os.LookupEnv("API_URL")
	if !ok {
		apiURL = "http://localhost:8080"
	}

	base, err := url.Parse(apiURL)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	r, teardown, err := router.Config(base)
	defer teardown()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	router.AttachRoutes(&r.RouterGroup)

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
