package main

import (
	"tankobon/cmd"
)

func main() {
	cmd.Execute()
}
