package utils

import (
	"os"
	"strconv"
	"strings"
)

// DefaultSemaphoreLimit is the worker count used when no limit is configured.
const DefaultSemaphoreLimit = 4

// GetSemaphoreLimit returns the semaphore limit from the SEMAPHORE_LIMIT
// environment variable or DefaultSemaphoreLimit.
func GetSemaphoreLimit() int {
	limit, err := strconv.Atoi(os.Getenv("SEMAPHORE_LIMIT"))
	if err != nil || limit <= 0 {
		return DefaultSemaphoreLimit
	}
	return limit
}

// GetEnvBool reports whether the environment variable is set to a true value.
func GetEnvBool(key string) bool {
	val, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && val
}
