package main

import "contractqa/internal/cli"

// The browser form on its own; flags are those of "contractqa serve".
func main() {
	cli.ExecuteServe()
}
