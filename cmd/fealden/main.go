package main

import (
	"fealden/internal/appshell"
	"fealden/internal/cli"
)

func main() {
	appshell.Main(cli.Run)
}
