package main

import (
	"github.com/waytab/waytab/cmd/waytab/commands"
)

func main() {
	commands.Execute()
}
