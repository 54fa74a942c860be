package cmd

import (
	"fmt"
	"log"

	"fincast/api"
	"fincast/internal/app"
	"fincast/internal/config"
	"fincast/internal/logger"
	"fincast/internal/repository"
)

func InitializeDependencies(configPath string) (*api.ApiHandler, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l := logger.New()

	runRepository, err := repository.NewRunRepository(cfg.Database.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run store: %w", err)
	}

	var explainRepository repository.ExplainRepository
	if cfg.OpenAI.APIKey != "" {
		explainRepository, err = repository.NewExplainRepository(cfg.OpenAI.APIKey)
		if err != nil {
			return nil, nil, err
		}
	}

	apiHandler := &api.ApiHandler{
		SimulationHandler: app.SimulationHandler{
			RunRepository:    runRepository,
			TaxBrackets:      cfg.Taxation.Brackets,
			CapitalGainsRate: cfg.Taxation.CapitalGainsRate,
			Logger:           l,
		},
		RunRepository:     runRepository,
		ExplainRepository: explainRepository,
		JwtDecodeToken:    cfg.Auth.JwtSecret,
		Logger:            l,
	}

	return apiHandler, cfg, nil
}

func CloseDependencies(handler *api.ApiHandler) {
	err := handler.RunRepository.Close()
	if err != nil {
		log.Fatalf("failed to close run store: %v", err)
	}
}
