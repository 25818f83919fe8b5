// Package autoload loads .env files into the process environment on import,
// before infra.LoadConfig reads it. Variables already set are never overridden.
package autoload

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"telemetry-dashboard/app/src/infra"
)

var logger = infra.NewLogger(os.Stdout, "autoload")

func init() {
	if err := Load(Files()...); err != nil {
		logger.Printf(context.Background(), "dotenv autoload: %v", err)
	}
}

// Files returns the dotenv files to load: DOTENV_FILES (comma separated) or ".env".
func Files() []string {
	raw := strings.TrimSpace(os.Getenv("DOTENV_FILES"))
	if raw == "" {
		return []string{".env"}
	}
	var files []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Load applies every existing file in order and skips missing ones.
func Load(files ...string) error {
	var errs []error
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
