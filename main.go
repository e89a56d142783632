package main

import (
	"autothread-bot/bot"
	"autothread-bot/command"
	"autothread-bot/handlers"
)

func main() {
	bot.Run(handlers.Register, command.GetCommandDefinitions())
}
