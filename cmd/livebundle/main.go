package main

import "livebundle/internal/cli"

func main() {
	cli.Execute()
}
