package main

import "github.com/pfrederiksen/walker-events/internal/cli"

func main() {
	cli.Execute()
}
