package main

import (
	"os"

	"directory-enricher/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		os.Exit(1)
	}
}
