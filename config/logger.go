// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// NewLogger builds a logger at cfg.LogLevel. The debug level selects zap's
// development encoder; LogFile, when set, replaces stderr as the output.
func NewLogger(cfg Config) (*zap.SugaredLogger, error) {
	level := strings.ToLower(cfg.LogLevel)
	if !validLogLevels[level] {
		return nil, errors.Wrapf(ErrInvalidLogLevel, "%q", cfg.LogLevel)
	}
	atom, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidLogLevel, "%q: %v", cfg.LogLevel, err)
	}

	zc := zap.NewProductionConfig()
	if level == "debug" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = atom
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
	}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "config: build logger")
	}
	return l.Sugar(), nil
}
