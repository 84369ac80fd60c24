package main

import (
	"curator/cmd/handlers"
	"curator/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
