package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/lead-scorer/internal/leads"
	"github.com/spigell/lead-scorer/internal/logger"
	"github.com/spigell/lead-scorer/internal/scoring"
)

const (
	PromptRanked         = "Show ranked leads"
	PromptReportByIntent = "Report by intent"
	PromptResultsToFile  = "Dump results to file"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptRanked, PromptReportByIntent, PromptResultsToFile, PromptExit},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a lead file against an offer once and report the result",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("offer", "o", "", "yaml file describing the offer (required)")
	scoreCmd.Flags().StringP("leads", "l", "", "csv or xlsx file with leads (required)")
	scoreCmd.Flags().String("output", "", "write ranked results to this csv or xlsx file")
	scoreCmd.Flags().BoolP("yes", "y", false, "do not show the interactive menu after scoring")

	scoreCmd.MarkFlagRequired("offer")
	scoreCmd.MarkFlagRequired("leads")
}

func score(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	offer, err := loadOffer(cmd.Flag("offer").Value.String())
	if err != nil {
		logger.Fatal("loading the offer", zap.Error(err))
	}

	input, err := loadLeads(cmd.Flag("leads").Value.String())
	if err != nil {
		logger.Fatal("loading leads", zap.Error(err))
	}

	logger.Info("scoring leads", zap.String("offer", offer.Name), zap.Int("count", len(input)))

	classifier, err := newClassifier(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the intent classifier", zap.Error(err))
	}

	results, err := newScorer(classifier, config.Scoring, logger).Run(ctx, input, offer)
	if err != nil {
		logger.Fatal("scoring failed", zap.Error(err), zap.String("kind", scoring.KindOf(err).String()))
	}

	ranked := scoring.Rank(results)

	if output := cmd.Flag("output").Value.String(); output != "" {
		if err := scoring.WriteFile(output, ranked); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		logger.Info("results written", zap.String("filename", output))
	}

	if cmd.Flag("yes").Value.String() == "true" {
		printRanked(logger, ranked)
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, ranked); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, ranked []scoring.ScoredLead) error {
	switch action {
	case PromptRanked:
		printRanked(logger, ranked)
		return nil
	case PromptReportByIntent:
		pretty, _ := json.MarshalIndent(scoring.ReportByIntent(ranked), "", "  ")
		logger.Info(string(pretty), zap.Int("leads count", len(ranked)))
		return nil
	case PromptResultsToFile:
		filename, err := scoring.DumpToTmpFile(ranked)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printRanked(logger *zap.Logger, ranked []scoring.ScoredLead) {
	for i, r := range ranked {
		logger.Info(fmt.Sprintf("#%d %s", i+1, r.Name),
			zap.String("company", r.Company),
			zap.String("role", r.Role),
			zap.String("intent", string(r.Intent)),
			zap.Int("score", r.Score),
			zap.String("reasoning", r.Reasoning),
		)
	}
}

// loadOffer reads and validates a yaml offer file.
func loadOffer(path string) (*leads.Offer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read offer: %w", err)
	}

	var offer leads.Offer
	if err := yaml.Unmarshal(data, &offer); err != nil {
		return nil, fmt.Errorf("parse offer %s: %w", filepath.Base(path), err)
	}

	if err := offer.Validate(); err != nil {
		return nil, err
	}
	return &offer, nil
}

func loadLeads(path string) ([]leads.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read leads: %w", err)
	}
	return leads.Parse(filepath.Base(path), data)
}
