package di

import (
	"context"
	"fmt"

	"github.com/aristath/megasena/internal/config"
	"github.com/aristath/megasena/internal/modules/batch"
	"github.com/aristath/megasena/internal/modules/frequency"
	"github.com/aristath/megasena/internal/modules/generation"
	"github.com/aristath/megasena/internal/modules/history"
	"github.com/aristath/megasena/internal/modules/quadrants"
	"github.com/aristath/megasena/internal/modules/scoring"
	"github.com/rs/zerolog"
)

// InitializeServices creates the engine services and loads the draw history.
// A failed load is logged, not returned: the server starts and reports the
// store as unavailable until a reload succeeds.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	sources, err := buildSources(ctx, cfg, log)
	if err != nil {
		return err
	}

	container.HistoryService = history.NewService(container.DrawRepo, sources, log)
	container.Classifier = quadrants.New()

	engine := BatchConfig(cfg.Engine)
	container.Analyzer = frequency.NewAnalyzer(engine.Frequency, container.Classifier, log)
	container.Scorer = scoring.NewEngine(scoring.DefaultConfig())
	container.Orchestrator = batch.NewOrchestrator(
		engine,
		container.HistoryService,
		container.Classifier,
		container.Analyzer,
		container.Scorer,
		container.BatchRepo,
		log,
	)

	if err := container.HistoryService.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Draw history not loaded, generation unavailable until a reload succeeds")
	}

	log.Debug().Int("sources", len(sources)).Msg("Services initialized")
	return nil
}

// BatchConfig maps the engine settings onto orchestration defaults
func BatchConfig(engine config.EngineConfig) batch.Config {
	return batch.Config{
		MaxQuantity:     engine.MaxQuantity,
		DefaultQuantity: engine.DefaultQuantity,
		Workers:         engine.Workers,
		Timeout:         engine.Timeout,
		Seed:            engine.Seed,
		Frequency: frequency.Config{
			HotWindow:  engine.HotWindow,
			ColdWindow: engine.ColdWindow,
		},
		Generation: generation.Config{
			AttemptBudget:     engine.AttemptBudget,
			MaxEmptyQuadrants: engine.MaxEmptyQuadrants,
			Sampling:          generation.Sampling(engine.Sampling),
			Exclude:           engine.Exclude,
		},
	}
}

func buildSources(ctx context.Context, cfg *config.Config, log zerolog.Logger) ([]history.Source, error) {
	var sources []history.Source

	if cfg.DatasetPath != "" {
		sources = append(sources, history.FileSource{Path: cfg.DatasetPath})
	}

	if cfg.DatasetS3 != nil {
		s3cfg := cfg.DatasetS3.ToS3Config()
		if s3cfg.Enabled() {
			source, err := history.NewS3Source(ctx, s3cfg, log)
			if err != nil {
				return nil, fmt.Errorf("failed to create S3 dataset source: %w", err)
			}
			sources = append(sources, source)
		}
	}

	return sources, nil
}
