package main

import "github.com/diogo/ai29/internal/commands"

func main() {
	commands.Execute()
}
