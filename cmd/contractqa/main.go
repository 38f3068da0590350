package main

import "contractqa/internal/cli"

func main() {
	cli.Execute()
}
