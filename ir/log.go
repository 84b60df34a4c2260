package ir

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewDevelopmentLogger builds a human-readable zap logger suitable for
// attaching to a ModuleCtx via WithLogger during development/test runs —
// SSA construction logs speculative φ insertion, trivial-φ elimination,
// and block sealing at Debug level (SPEC_FULL.md "Logging").
func NewDevelopmentLogger() (*zap.Logger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, errors.Wrap(err, "building development logger")
	}
	return logger, nil
}

// NewProductionLogger builds a JSON zap logger suitable for production
// compiler services embedding this package.
func NewProductionLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, errors.Wrap(err, "building production logger")
	}
	return logger, nil
}
