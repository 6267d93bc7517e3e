package main

import "papersum/internal/cli"

func main() {
	cli.Execute()
}
