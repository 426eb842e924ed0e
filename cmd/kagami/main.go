package main

import "github.com/kagami-ai/kagami/internal/cli"

func main() {
	cli.Execute()
}
