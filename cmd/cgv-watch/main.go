package main

import "github.com/pfrederiksen/cgv-watch/internal/cli"

func main() {
	cli.Execute()
}
