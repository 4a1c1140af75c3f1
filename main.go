package main

import (
	"os"

	"phrasecounter/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
