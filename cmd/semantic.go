package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profile-matcher/internal/documents"
	"github.com/spigell/profile-matcher/internal/scoring"
)

var semanticCmd = &cobra.Command{
	Use:   "semantic --phrase <phrase> <file>",
	Short: "Pair phrases with the most similar noun phrases of a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		semanticMatch(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(semanticCmd)

	semanticCmd.Flags().StringSliceP("phrase", "p", nil, "query phrase, can be repeated")
	semanticCmd.Flags().Int("top-n", 0, "maximum number of matches (default from semantic.top-n)")
	semanticCmd.Flags().Float64("threshold", 0, "minimum similarity in [0, 1] (default from semantic.threshold)")

	viper.BindPFlag("semantic.top-n", semanticCmd.Flags().Lookup("top-n"))
	viper.BindPFlag("semantic.threshold", semanticCmd.Flags().Lookup("threshold"))
}

func semanticMatch(cmd *cobra.Command, path string) {
	ctx := context.Background()

	logger, config := setup()

	phrases, _ := cmd.Flags().GetStringSlice("phrase")
	prefs := scoring.NewPreferences("", phrases, nil)
	if err := prefs.Validate(); err != nil {
		logger.Fatal("at least one --phrase is required", zap.Error(err))
	}

	e, err := newEngine(config, logger)
	if err != nil {
		logger.Fatal("building the engine", zap.Error(err))
	}
	defer e.Close()

	if err := e.enableEmbedding(ctx); err != nil {
		logger.Fatal("building the embedding service", zap.Error(err))
	}

	doc, err := documents.LoadFile(path)
	if err != nil {
		logger.Fatal("loading document", zap.Error(err))
	}

	runCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	matches, err := e.semantic.Match(runCtx, prefs.Phrases, doc.Text, config.Semantic.TopN, config.Semantic.Threshold)
	if err != nil {
		logger.Fatal("finding semantic matches", zap.Error(err))
	}
	e.metrics.SemanticMatchesFound(len(matches))

	printSemanticMatches(cmd.OutOrStdout(), "", matches)
}
