package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profile-matcher/internal/documents"
	"github.com/spigell/profile-matcher/internal/filtering"
	"github.com/spigell/profile-matcher/internal/scoring"
	"github.com/spigell/profile-matcher/internal/vocabulary"
)

const (
	PromptDone = "done"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank mentor profiles against a student's skill and role preferences",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("student", "s", "", "student name")
	matchCmd.Flags().StringSlice("skill", nil, "desired skill, can be repeated")
	matchCmd.Flags().StringSlice("role", nil, "desired role, can be repeated")
	matchCmd.Flags().BoolP("interactive", "i", false, "select preferences from the vocabulary interactively")
	matchCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	matchCmd.Flags().String("documents-dir", "", "folder with mentor profiles")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with documents to exclude. Default is unset.")

	viper.BindPFlag("documents.dir", matchCmd.Flags().Lookup("documents-dir"))
	viper.BindPFlag("documents.exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()

	output, _ := cmd.Flags().GetString("output")
	if output != outputText && output != outputJSON {
		logger.Fatal("unsupported output format", zap.String("output", output))
	}

	logger.Info("starting the profile-matcher", zap.String("version", version))

	e, err := newEngine(config, logger)
	if err != nil {
		logger.Fatal("building the engine", zap.Error(err))
	}
	defer e.Close()

	prefs, err := readPreferences(cmd, e.registry)
	if err != nil {
		logger.Fatal("reading preferences", zap.Error(err))
	}

	if err := prefs.Validate(); err != nil {
		logger.Fatal("please select at least one skill or role",
			zap.Error(err),
			zap.String("hint", "use --skill, --role or --interactive"),
		)
	}

	if err := e.enableEmbedding(ctx); err != nil {
		logger.Fatal("building the embedding service", zap.Error(err))
	}

	docs, err := documents.Load(ctx, config.Documents.Dir, logger)
	if err != nil {
		logger.Fatal("loading documents", zap.Error(err))
	}

	if len(docs) == 0 {
		logger.Info("exiting", zap.String("reason", "no documents found"), zap.String("dir", config.Documents.Dir))
		return
	}

	runCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	results, err := e.scorer.ScoreAll(runCtx, prefs, docs)
	if err != nil {
		logger.Fatal("scoring documents", zap.Error(err))
	}

	results, err = runFilters(runCtx, config, logger, results)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	reports, err := e.explain(runCtx, prefs, results, docs)
	if err != nil {
		logger.Fatal("finding semantic matches", zap.Error(err))
	}

	out := matchOutput{Student: prefs.Student, Preferences: prefs.Phrases, Matches: reports}
	w := cmd.OutOrStdout()
	if output == outputJSON {
		if err := printJSON(w, out); err != nil {
			logger.Fatal("printing results", zap.Error(err))
		}
		return
	}

	printMatches(w, out)
}

func runFilters(ctx context.Context, config *Config, logger *zap.Logger, results []scoring.Result) ([]scoring.Result, error) {
	steps := filtering.Default()
	if config.Scoring.MinCombinedScore <= 0 {
		filtering.DisableByName(steps, "min_score", "minimum combined score is not set")
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	cfg := &filtering.Config{
		ExcludeDocuments: config.Documents.Exclude,
		ExcludeFile:      config.Documents.ExcludeFile,
		MinCombinedScore: config.Scoring.MinCombinedScore,
	}

	return filtering.Run(ctx, cfg, filtering.Deps{Logger: logger}, steps, results)
}

// explain attaches the semantic word matches of every ranked document.
func (e *engine) explain(ctx context.Context, prefs scoring.Preferences, results []scoring.Result, docs []documents.Document) ([]matchReport, error) {
	texts := make(map[string]string, len(docs))
	for _, d := range docs {
		texts[d.ID] = d.Text
	}

	reports := make([]matchReport, 0, len(results))
	for _, r := range results {
		matches, err := e.semantic.Match(ctx, prefs.Phrases, texts[r.DocumentID], e.config.Semantic.TopN, e.config.Semantic.Threshold)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", r.DocumentID, err)
		}
		e.metrics.SemanticMatchesFound(len(matches))
		reports = append(reports, matchReport{Result: r, SemanticMatches: matches})
	}

	return reports, nil
}

func readPreferences(cmd *cobra.Command, registry *vocabulary.Registry) (scoring.Preferences, error) {
	student, _ := cmd.Flags().GetString("student")
	skills, _ := cmd.Flags().GetStringSlice("skill")
	roles, _ := cmd.Flags().GetStringSlice("role")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if !interactive {
		return scoring.NewPreferences(student, skills, roles), nil
	}

	if strings.TrimSpace(student) == "" {
		prompt := promptui.Prompt{
			Label: "Enter student name",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("student name is required")
				}
				return nil
			},
		}
		name, err := prompt.Run()
		if err != nil {
			return scoring.Preferences{}, err
		}
		student = name
	}

	selectedSkills, err := multiSelect("Select desired skills", registry.List(vocabulary.Skills), skills)
	if err != nil {
		return scoring.Preferences{}, err
	}

	selectedRoles, err := multiSelect("Select desired roles", registry.List(vocabulary.Roles), roles)
	if err != nil {
		return scoring.Preferences{}, err
	}

	return scoring.NewPreferences(student, selectedSkills, selectedRoles), nil
}

// multiSelect lets the user pick options one by one until done is chosen.
func multiSelect(label string, options, selected []string) ([]string, error) {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[vocabulary.Normalize(s)] = true
	}

	for {
		items := make([]string, 0, len(options)+1)
		for _, option := range options {
			if !chosen[option] {
				items = append(items, option)
			}
		}

		if len(items) == 0 {
			break
		}

		prompt := promptui.Select{
			Label:  fmt.Sprintf("%s (%d selected), choose %q to finish", label, len(selected), PromptDone),
			Items:  append(items, PromptDone),
			Stdout: os.Stderr,
		}

		_, item, err := prompt.Run()
		if err != nil {
			return nil, err
		}

		if item == PromptDone {
			break
		}

		chosen[item] = true
		selected = append(selected, item)
	}

	return selected, nil
}
