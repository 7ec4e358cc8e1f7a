package main

import (
	"Blockbuster/cmd"
)

func main() {
	cmd.Execute()
}
