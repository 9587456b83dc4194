package main

import (
	"podforge/cmd/handlers"
	"podforge/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
