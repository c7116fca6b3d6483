package main

import "github.com/forPelevin/transub/internal/cli"

func main() {
	cli.Main()
}
