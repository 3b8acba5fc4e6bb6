// Command validate-fish-schema checks every species file under data/species
// against data/fish_schema.json. Both paths are resolved two directories above
// the directory holding the binary (or SPECIES_REPO_ROOT when set).
//
// Exit status is 0 when all files conform, 1 when any file has violations and
// 2 when the schema or a data file cannot be read or parsed.
package main

import (
	"context"
	"os"

	"species-schema-validator/internal/app"
	"species-schema-validator/internal/config"
)

func main() {
	cfg := config.Load()

	application := app.New(cfg, os.Stderr)
	code := application.Run(context.Background(), os.Stdout)
	application.Shutdown()

	os.Exit(code)
}
