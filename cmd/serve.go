package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/lead-scorer/internal/logger"
	"github.com/spigell/lead-scorer/internal/server"
	"github.com/spigell/lead-scorer/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the lead scoring HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 3001, "port to listen on")
	serveCmd.Flags().String("host", "", "interface to bind to. Default is all interfaces.")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the lead-scorer server", zap.String("version", version))

	classifier, err := newClassifier(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the intent classifier",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or ANTHROPIC_API_KEY matching ai.provider"),
		)
	}

	srv := server.New(server.Config{
		Host:           config.Server.Host,
		Port:           config.Server.Port,
		AllowedOrigins: config.Server.AllowedOrigins,
		MaxUploadBytes: config.Server.MaxUploadBytes,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
	}, store.New(), newScorer(classifier, config.Scoring, logger), logger)

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}

	logger.Info("server stopped")
}
