package main

import (
	"os"

	"github.com/gabrielcapilla/jukebox-driver/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
