package util

import (
	"errors"
	"io/fs"

	"github.com/OFFIS-RIT/graphlift/pkg/logger"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the process environment. Variables that are
// already set win over the files. Missing files are not an error.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No .env file found, using system environment variables")
			return
		}
		logger.Warn("Failed to parse .env file", "err", err)
	}
}
