package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-reviewer/internal/ai"
	"github.com/spigell/resume-reviewer/internal/ai/gemini"
	"github.com/spigell/resume-reviewer/internal/document"
	"github.com/spigell/resume-reviewer/internal/logger"
	"github.com/spigell/resume-reviewer/internal/report"
	"github.com/spigell/resume-reviewer/internal/review"
	"github.com/spigell/resume-reviewer/internal/secrets"
)

var resumeExtensions = []string{".pdf", ".docx"}

// runReview is the main command for the cli.
func runReview(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-reviewer", zap.String("version", version))

	interactive, _ := cmd.Flags().GetBool("interactive")
	filePath, err := resolveFile(args, config, interactive, selectResume)
	if err != nil {
		logger.Fatal("choosing a resume", zap.Error(err))
	}

	oracle, err := newOracle(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the oracle", zap.Error(err))
	}

	err = reviewResume(ctx, filePath, config.Output, oracle, document.DefaultLoaders(logger), logger, cmd.OutOrStdout())
	if err != nil {
		logger.Fatal("reviewing the resume", failureFields(filePath, err)...)
	}
}

// reviewResume runs the pipeline over filePath, persists the outputs and
// prints the grade. Nothing is written when the run fails.
func reviewResume(ctx context.Context, filePath string, output *OutputConfig, oracle ai.Oracle, loaders document.Loaders, logger *zap.Logger, out io.Writer) error {
	pipeline, err := review.New(review.Config{
		Oracle:  oracle,
		Loaders: loaders,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("building the review pipeline: %w", err)
	}

	result, err := pipeline.Run(ctx, filePath)
	if err != nil {
		return err
	}

	if err := persist(pipeline, result, output, logger); err != nil {
		return fmt.Errorf("saving the review: %w", err)
	}

	if err := report.FromResult(result).Print(out); err != nil {
		return fmt.Errorf("printing the review: %w", err)
	}

	return nil
}

func failureFields(filePath string, err error) []zap.Field {
	fields := []zap.Field{zap.String("file", filePath), zap.Error(err)}
	switch {
	case errors.Is(err, document.ErrUnsupportedType):
		fields = append(fields, zap.String("hint", "only PDF and DOCX resumes are supported"))
	case errors.Is(err, ai.ErrContractViolation):
		fields = append(fields, zap.String("hint", "the model answered outside the requested schema; try again or another model"))
	}
	return fields
}

func persist(pipeline *review.Pipeline, result *review.Result, output *OutputConfig, logger *zap.Logger) error {
	reportFile := strings.TrimSpace(output.Report)
	if reportFile != "" {
		if err := report.FromResult(result).WriteFile(reportFile); err != nil {
			return err
		}
		logger.Info("saved the review", zap.String("filename", reportFile))
	}

	if resultFile := strings.TrimSpace(output.Result); resultFile != "" {
		if err := report.DumpResult(resultFile, result); err != nil {
			return err
		}
		logger.Info("dumped the extracted resume", zap.String("filename", resultFile))
	}

	if diagramFile := strings.TrimSpace(output.Diagram); diagramFile != "" {
		if err := pipeline.DrawFile(diagramFile); err != nil {
			logger.Warn("skipping workflow diagram", zap.Error(err))
		} else {
			logger.Debug("saved the workflow diagram", zap.String("filename", diagramFile))
		}
	}

	return nil
}

func newOracle(ctx context.Context, cfg *AIConfig, parent *zap.Logger) (ai.Oracle, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithCommonFields(parent, "gemini", cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, cfg.Gemini.MaxLogLength, genLogger)
	if err != nil {
		return nil, err
	}

	logger.WithCommonFields(parent, "gemini", generator.Model()).Info("using the oracle")

	return generator, nil
}

// resolveFile picks the resume to review: command line argument, interactive
// choice, config value, then the built-in default.
func resolveFile(args []string, config *Config, interactive bool, choose func([]string) (string, error)) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}

	if interactive {
		candidates, err := findResumes(".")
		if err != nil {
			return "", err
		}
		if len(candidates) == 0 {
			return "", errors.New("no pdf or docx files found in the current directory")
		}
		return choose(candidates)
	}

	if file := strings.TrimSpace(config.File); file != "" {
		return file, nil
	}

	return defaultFile, nil
}

func findResumes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(resumeExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

func selectResume(candidates []string) (string, error) {
	prompt := promptui.Select{
		Label: "Choose a resume and press ENTER",
		Items: candidates,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return selected, nil
}
