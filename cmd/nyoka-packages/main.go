package main

import "nyoka-packages/internal/cli"

func main() {
	cli.Execute()
}
