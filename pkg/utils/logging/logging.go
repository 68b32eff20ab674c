package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// InitLogger builds the application logger for the given environment.
// Test and dev environments get a human-readable development logger at debug
// level; everything else gets the production JSON logger.
func InitLogger(env string) (*zap.Logger, error) {
	var cfg zap.Config

	switch env {
	case "test", "dev":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
