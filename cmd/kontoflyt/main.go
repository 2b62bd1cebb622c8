package main

import (
	"github.com/MrJamesThe3rd/kontoflyt/cmd/kontoflyt/internal/command"
)

func main() {
	command.Execute()
}
