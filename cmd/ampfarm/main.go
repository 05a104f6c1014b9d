package main

import "github.com/elys-network/ampfarm/internal/cli"

func main() {
	cli.Execute()
}
