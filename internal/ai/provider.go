package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/config"
	"github.com/christopherklint97/studyr/internal/progress"
)

type Provider interface {
	Motivate(ctx context.Context, sum progress.Summary) (*Motivation, error)
}

// New builds the provider named in cfg.
func New(cfg config.AIConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAI(cfg.APIKey, cfg.Model, logger)
	case "claude-cli":
		return NewClaudeCLI(cfg.Model, logger), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
