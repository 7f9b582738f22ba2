package main

import "github.com/marshallshelly/costume-shop/cmd/shop/commands"

func main() {
	commands.Execute()
}
