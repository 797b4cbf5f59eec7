package utils

import "go.uber.org/zap"

// NewLogger returns a zap logger writing to stderr, so command output on stdout stays clean.
// When debug is true it uses the development config (console encoding, debug level);
// otherwise the production config (JSON, info level) tagged with the service name.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.InitialFields = map[string]any{"service": "nocs"}
	return cfg.Build()
}
