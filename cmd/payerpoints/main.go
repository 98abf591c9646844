package main

import (
	"fmt"
	"os"

	"github.com/denmor86/ya-payerpoints/internal/app"
	"github.com/denmor86/ya-payerpoints/internal/config"
	"github.com/denmor86/ya-payerpoints/internal/logger"
)

func main() {
	// загрузка конфига
	config := config.NewConfig()
	// инициализация логгера
	if err := logger.Initialize(config.Server.LogLevel); err != nil {
		panic(fmt.Sprintf("can't initialize logger: %s ", err.Error()))
	}

	if err := app.Run(config); err != nil {
		logger.Error("service stopped with error:", err.Error())
		// os.Exit не выполняет defer
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}
