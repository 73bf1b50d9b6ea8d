package respira

import (
	"log/slog"
	"math"
	"os"
	"strconv"
)

// FillEnvVar returns the value of a runtime Environment Variable
func FillEnvVar(ev string) string {
	// If the EnvVar doesn't exist return a default string
	value := os.Getenv(ev)
	if value == "" {
		value = "ENOENT"
	}
	return value
}

// FillEnvVarInt returns an integer Environment Variable,
// or def when it is unset or not a number
func FillEnvVarInt(ev string, def int) int {
	value := os.Getenv(ev)
	if value == "" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		slog.Error("Env var is not an integer, using default",
			slog.String("var", ev),
			slog.String("value", value),
			slog.Int("default", def))
		return def
	}
	return i
}

// EnvOr returns the Environment Variable or def when unset
func EnvOr(ev, def string) string {
	if value := os.Getenv(ev); value != "" {
		return value
	}
	return def
}

// urlCat is variadic, concatenating any set of strings into a URL.
func urlCat(u ...string) string {
	var completeURL string
	for _, p := range u {
		completeURL = completeURL + p
	}
	slog.Debug("New endpoint", slog.String("URL", completeURL))
	return completeURL
}

// FloatPrecise rounds f to p decimal places, ties to even
func FloatPrecise(f float64, p int) float64 {
	scale := math.Pow(10, float64(p))
	return math.RoundToEven(f*scale) / scale
}

// InitLogger sets the default slog logger.
// Valid levels: "debug", "info", "warn", "error"
// JSON output is used when GO_ENV=production.
func InitLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var logger *slog.Logger
	if os.Getenv("GO_ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	slog.SetDefault(logger)
	return logger
}
