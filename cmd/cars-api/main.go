// cmd/cars-api/main.go
package main

import (
	"os"

	"cars-api/cmd/cars-api/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
