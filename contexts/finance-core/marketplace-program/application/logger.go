package application

import "log/slog"

// ModuleName is the "module" attribute on every program log line.
const ModuleName = "finance-core/marketplace-program"

// ResolveLogger falls back to the process default when no logger is wired.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
