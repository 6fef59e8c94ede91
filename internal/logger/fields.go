package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Log field keys shared by the embedding providers.
const (
	FieldProvider = "embedding_provider"
	FieldModel    = "embedding_model"
)

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the embedding provider and model. Blank values are left out.
func CommonFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	for _, kv := range [][2]string{{FieldProvider, provider}, {FieldModel, model}} {
		if value := strings.TrimSpace(kv[1]); value != "" {
			fields = append(fields, zap.String(kv[0], value))
		}
	}
	return fields
}

// WithCommonFields tags logger with the embedding provider and model.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}
