// pkg/logger/logger.go
package logger

import (
	"strings"

	"go.uber.org/zap"
)

type Sugared = *zap.SugaredLogger

// New returns a production logger for production environments and a development logger otherwise.
func New(env string) Sugared {
	var z *zap.Logger
	switch strings.ToLower(env) {
	case "production", "prod":
		z, _ = zap.NewProduction()
	default:
		z, _ = zap.NewDevelopment()
	}
	return z.Sugar()
}
