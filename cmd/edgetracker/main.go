package main

import "github.com/rustyeddy/edgetracker/internal/cli"

func main() {
	cli.Execute()
}
