package main

import "github.com/MarcoAyalaT/Vicente/internal/cli"

func main() {
	cli.Execute()
}
