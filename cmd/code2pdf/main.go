package main

import "github.com/svjt78/code-to-pdf/internal/cli"

func main() {
	cli.Execute()
}
