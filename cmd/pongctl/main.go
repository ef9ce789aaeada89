package main

import "github.com/mcoot/screenpong/internal/cli"

func main() {
	cli.Execute()
}
