package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/profile-matcher/internal/vocabulary"
)

var vocabularyCmd = &cobra.Command{
	Use:   "vocabulary",
	Short: "Print the active vocabulary as YAML",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := setup()

		registry := vocabulary.Default()
		if config.VocabularyFile != "" {
			loaded, err := vocabulary.Load(config.VocabularyFile)
			if err != nil {
				logger.Fatal("loading vocabulary", zap.Error(err))
			}
			registry = loaded
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(registry.Lists()); err != nil {
			logger.Fatal("printing vocabulary", zap.Error(err))
		}
		if err := enc.Close(); err != nil {
			logger.Fatal("printing vocabulary", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(vocabularyCmd)
}
