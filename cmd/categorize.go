package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/profile-matcher/internal/documents"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize [files...]",
	Short: "Show the categorized key phrases of mentor profiles",
	Long: `Show the vocabulary phrases found in each profile, grouped by category.
Without arguments every profile of documents.dir is processed.`,
	Run: func(cmd *cobra.Command, args []string) {
		categorize(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
}

func categorize(cmd *cobra.Command, args []string) {
	logger, config := setup()

	e, err := newEngine(config, logger)
	if err != nil {
		logger.Fatal("building the engine", zap.Error(err))
	}
	defer e.Close()

	docs, err := loadDocuments(context.Background(), config, logger, args)
	if err != nil {
		logger.Fatal("loading documents", zap.Error(err))
	}

	w := cmd.OutOrStdout()
	for i, doc := range docs {
		categorized, err := e.phrases.Categorize(doc.Text)
		if err != nil {
			logger.Fatal("categorizing document", zap.String("document", doc.ID), zap.Error(err))
		}

		if i > 0 {
			fmt.Fprintln(w)
		}
		printCategorized(w, doc.ID, categorized)
	}
}

// loadDocuments reads the given files or, without files, the documents folder.
func loadDocuments(ctx context.Context, config *Config, logger *zap.Logger, files []string) ([]documents.Document, error) {
	if len(files) == 0 {
		return documents.Load(ctx, config.Documents.Dir, logger)
	}

	docs := make([]documents.Document, 0, len(files))
	for _, file := range files {
		doc, err := documents.LoadFile(file)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
