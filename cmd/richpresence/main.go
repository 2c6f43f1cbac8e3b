// Command richpresence edits and broadcasts Discord Rich Presence profiles.
package main

import (
	"os"

	"github.com/small-frappuccino/richpresence/pkg/app"
)

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
