package main

import "sakurareel/internal/cli"

func main() {
	cli.Execute()
}
