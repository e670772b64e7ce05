package main

import "github.com/AthenaOracle/athena-genesis/internal/cli"

func main() {
	cli.Execute()
}
