package main

import (
	"github.com/joho/godotenv"

	"github.com/leoninela2025/tennis-bot/cmd"
)

func main() {
	// Optional .env for local development; environment always wins.
	_ = godotenv.Load()
	cmd.Execute()
}
