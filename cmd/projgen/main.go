package main

import (
	"github.com/tacogips/projgen/internal/cli"
)

func main() {
	cli.Execute()
}
