package cmd

import (
	"log"
	"os"
	"strconv"
)

const envPrefix = "AKITASYNC_"

// envLogger receives the warnings about malformed variables.
var envLogger = log.New(os.Stderr, "", 0)

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}

	return fallback
}

// envParse returns fallback when the variable is unset. A variable that is set
// but cannot be parsed is reported and also falls back.
func envParse[T any](
	key string,
	fallback T,
	parse func(string) (T, error),
) T {
	raw, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return fallback
	}

	v, err := parse(raw)
	if err != nil {
		envLogger.Printf("akitasync: ignoring %s%s=%q: %v",
			envPrefix, key, raw, err)
		return fallback
	}

	return v
}

func envInt(key string, fallback int) int {
	return envParse(key, fallback, strconv.Atoi)
}

func envUint(key string, fallback uint64) uint64 {
	return envParse(key, fallback, func(s string) (uint64, error) {
		return strconv.ParseUint(s, 10, 64)
	})
}

func envFloat(key string, fallback float64) float64 {
	return envParse(key, fallback, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func envBool(key string, fallback bool) bool {
	return envParse(key, fallback, strconv.ParseBool)
}
