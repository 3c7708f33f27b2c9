package main

import "github.com/tzoracle/oracled/internal/cli"

func main() {
	cli.Execute()
}
