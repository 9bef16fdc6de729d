package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads a dotenv file into the process environment before Parse runs.
// A missing file is not an error; already-set variables are never overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("stat dotenv: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}

	return nil
}
