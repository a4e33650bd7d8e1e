package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/config"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/conversations"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/generate"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/llm"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/presenter"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/telemetry"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/version"
)

// GenerateConfig holds configuration for the generate command
type GenerateConfig struct {
	AnalysisFile   string
	SampleFile     string
	ConversationID string
	Instruction    string
	ContentFile    string
	OutputFile     string
}

// NewGenerateConfig creates a new GenerateConfig with default values
func NewGenerateConfig() *GenerateConfig {
	return &GenerateConfig{}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate or refine a cover letter",
	Long: `Generate a cover letter from an analysis file, or refine the letter in
an existing conversation with a new instruction. The conversation is
looked up by analysis, so repeated calls with the same analysis file
continue the same thread.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		genConfig, err := getGenerateConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		shutdown, err := telemetry.InitTracer(ctx, tracingConfig(cfg))
		if err != nil {
			logger.G(ctx).WithError(err).Warn("tracing unavailable, continuing without it")
			shutdown = func(context.Context) error { return nil }
		}
		defer shutdown(ctx)

		service, err := conversations.NewServiceFromConfig(ctx, &cfg.Store)
		if err != nil {
			return errors.Wrap(err, "failed to initialize conversation store")
		}
		defer service.Close()

		orchestrator, err := llm.NewOrchestratorFromConfig(ctx, cfg.Generation)
		if err != nil {
			return err
		}

		engine := generate.NewEngine(orchestrator, service, generate.Options{
			Provider:    cfg.Generation.Provider,
			Compression: cfg.Compression,
		})

		req := generate.Request{
			ConversationID: genConfig.ConversationID,
			Instruction:    genConfig.Instruction,
		}

		if genConfig.AnalysisFile != "" {
			analysis, err := readAnalysis(genConfig.AnalysisFile)
			if err != nil {
				return err
			}
			req.Analysis = &analysis
		}
		if genConfig.SampleFile != "" {
			sample, err := os.ReadFile(genConfig.SampleFile)
			if err != nil {
				return errors.Wrap(err, "failed to read sample letter file")
			}
			req.SampleLetter = string(sample)
		}
		if genConfig.ContentFile != "" {
			content, err := os.ReadFile(genConfig.ContentFile)
			if err != nil {
				return errors.Wrap(err, "failed to read current content file")
			}
			req.CurrentContent = string(content)
		}

		result, err := engine.Generate(ctx, req)
		if err != nil {
			return err
		}

		if result.EditsDetected {
			presenter.Info("Manual edits detected and preserved in the conversation history")
		}

		if genConfig.OutputFile != "" {
			if err := os.WriteFile(genConfig.OutputFile, []byte(result.Letter), 0644); err != nil {
				return errors.Wrap(err, "failed to write letter")
			}
			presenter.Success("Letter written to " + genConfig.OutputFile)
		} else {
			presenter.Section("Generated Letter")
			presenter.Info(result.Letter)
		}

		presenter.Success("Conversation: " + result.ConversationID)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("analysis", "", "path to the analysis JSON file")
	generateCmd.Flags().String("sample", "", "path to a sample letter to match tone against")
	generateCmd.Flags().String("conversation-id", "", "continue a specific conversation instead of looking one up by analysis")
	generateCmd.Flags().StringP("instruction", "i", "", "instruction for this iteration (required)")
	generateCmd.Flags().String("content", "", "path to the current letter text, if edited outside the tool")
	generateCmd.Flags().StringP("output", "o", "", "write the generated letter to a file instead of stdout")
	generateCmd.MarkFlagRequired("instruction")
}

func getGenerateConfigFromFlags(cmd *cobra.Command) (*GenerateConfig, error) {
	genConfig := NewGenerateConfig()

	genConfig.AnalysisFile, _ = cmd.Flags().GetString("analysis")
	genConfig.SampleFile, _ = cmd.Flags().GetString("sample")
	genConfig.ConversationID, _ = cmd.Flags().GetString("conversation-id")
	genConfig.Instruction, _ = cmd.Flags().GetString("instruction")
	genConfig.ContentFile, _ = cmd.Flags().GetString("content")
	genConfig.OutputFile, _ = cmd.Flags().GetString("output")

	if genConfig.AnalysisFile == "" && genConfig.ConversationID == "" {
		return nil, errors.New("either --analysis or --conversation-id is required")
	}

	return genConfig, nil
}

func readAnalysis(path string) (convtypes.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return convtypes.AnalysisResult{}, errors.Wrap(err, "failed to read analysis file")
	}

	var analysis convtypes.AnalysisResult
	if err := json.Unmarshal(data, &analysis); err != nil {
		return convtypes.AnalysisResult{}, errors.Wrap(err, "failed to parse analysis file")
	}
	if analysis.ID == "" {
		return convtypes.AnalysisResult{}, errors.New("analysis file has no id")
	}

	return analysis, nil
}

func tracingConfig(cfg *config.Config) telemetry.Config {
	tracing := cfg.Tracing
	if tracing.ServiceVersion == "" {
		tracing.ServiceVersion = version.Get().Version
	}
	return tracing
}
