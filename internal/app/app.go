package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denmor86/ya-payerpoints/internal/config"
	"github.com/denmor86/ya-payerpoints/internal/ledger"
	"github.com/denmor86/ya-payerpoints/internal/logger"
	"github.com/denmor86/ya-payerpoints/internal/network/router"
	"github.com/denmor86/ya-payerpoints/internal/services"
	"github.com/denmor86/ya-payerpoints/internal/storage"
	"github.com/denmor86/ya-payerpoints/internal/worker"
)

func Run(config config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		journal       storage.JournalStorage
		journalWorker *worker.JournalWorker
		pointsJournal services.Journal
	)
	// журнал операций подключается только при заданном DSN
	if config.Journal.DatabaseDSN != "" {
		db, err := storage.NewDatabase(ctx, config.Journal.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("error connect journal storage: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("error close journal storage", err.Error())
			}
		}()
		if err := db.Initialize(ctx); err != nil {
			return fmt.Errorf("error initialize journal storage: %w", err)
		}
		journal = storage.NewJournalStorage(db)
		journalWorker = worker.NewJournalWorker(journal, config.Journal)
		journalWorker.Start(ctx)
		pointsJournal = journalWorker
	}

	points := services.NewPoints(ledger.New(), pointsJournal)
	router := router.NewRouter(config, points, journal)

	server := &http.Server{
		Addr:    config.Server.ListenAddr,
		Handler: router.HandleRouter(),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	failed := make(chan error, 1)
	go func() {
		logger.Info("Starting server config:", config.Server)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			failed <- err
		}
	}()

	var runErr error
	select {
	case <-stop:
		logger.Info("Shutdown server")
	case err := <-failed:
		runErr = fmt.Errorf("error listen server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutdown server", err.Error())
	}
	// остаток журнала дописывается до закрытия соединения с БД
	if journalWorker != nil {
		journalWorker.Stop()
	}
	logger.Info("Server stopped")
	return runErr
}
