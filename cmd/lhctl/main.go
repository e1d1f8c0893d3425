package main

import "github.com/mcoot/lighthouse/internal/cli"

func main() {
	cli.Execute()
}
