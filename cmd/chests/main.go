package main

import "github.com/mcoot/gameofchests/internal/cli"

func main() {
	cli.Execute()
}
