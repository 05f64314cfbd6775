// brewguide is a timed coffee brewing guide.
//
// Usage:
//
//	brewguide list [--search query]
//	brewguide guide <recipe-id> [--plain]
//	brewguide resolve <recipe-id> <elapsed>
//	brewguide check --seconds N <narration...>
//	brewguide lint [path...] [--show-ok]
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/brewguide/internal/cli"
)

func main() {
	_ = godotenv.Load()
	os.Exit(cli.Execute())
}
