package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/profile-matcher/internal/documents"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the content tokens and the preprocessed text of a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inspectDocument(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspectDocument(cmd *cobra.Command, path string) {
	logger, config := setup()

	e, err := newEngine(config, logger)
	if err != nil {
		logger.Fatal("building the engine", zap.Error(err))
	}
	defer e.Close()

	doc, err := documents.LoadFile(path)
	if err != nil {
		logger.Fatal("loading document", zap.Error(err))
	}

	records, err := e.inspector.Tokens(doc.Text)
	if err != nil {
		logger.Fatal("inspecting tokens", zap.Error(err))
	}

	preprocessed, err := e.inspector.Preprocess(doc.Text)
	if err != nil {
		logger.Fatal("preprocessing text", zap.Error(err))
	}

	if err := printTokens(cmd.OutOrStdout(), records, preprocessed); err != nil {
		logger.Fatal("printing tokens", zap.Error(err))
	}
}
