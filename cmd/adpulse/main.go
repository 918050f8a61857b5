package main

import "adpulse/internal/cli"

func main() {
	cli.Execute()
}
