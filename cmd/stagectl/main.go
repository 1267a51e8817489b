package main

import "github.com/stagedoor/backend/internal/cli"

func main() {
	cli.Execute()
}
