package main

import "github.com/benjaminschreck/go-opendoc/internal/cli"

var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Main()
}
