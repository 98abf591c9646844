package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/denmor86/ya-payerpoints/internal/config"
	"github.com/denmor86/ya-payerpoints/internal/logger"
	"github.com/denmor86/ya-payerpoints/internal/models"
	"github.com/denmor86/ya-payerpoints/internal/storage"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

func InitCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "journal-storage",
		Timeout: 30 * time.Second, // через 30 сек пробуем записать снова
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 5 неудачных записей подряд
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infow("Circuit Breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// JournalWorker - фоновая запись аудиторского журнала пачками
type JournalWorker struct {
	Storage       storage.JournalStorage
	Breaker       *gobreaker.CircuitBreaker
	WaitGroup     sync.WaitGroup
	QuitChan      chan struct{}
	Queue         chan models.JournalEntry
	BatchSize     int
	MaxPending    int
	FlushInterval time.Duration

	mu      sync.Mutex
	pending []models.JournalEntry
}

// NewJournalWorker - конструктор обработчика журнала
func NewJournalWorker(storage storage.JournalStorage, cfg config.JournalConfig) *JournalWorker {
	batchSize := max(cfg.BatchSize, 1)
	queueSize := max(cfg.QueueSize, batchSize)
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &JournalWorker{
		Storage:       storage,
		Breaker:       InitCircuitBreaker(),
		QuitChan:      make(chan struct{}),
		Queue:         make(chan models.JournalEntry, queueSize),
		BatchSize:     batchSize,
		MaxPending:    queueSize,
		FlushInterval: interval,
	}
}

// Record - ставит записи в очередь, не блокируя вызывающего.
// При переполненной очереди запись отбрасывается.
func (w *JournalWorker) Record(entries ...models.JournalEntry) {
	for _, e := range entries {
		select {
		case w.Queue <- e:
		default:
			logger.Warn("Journal queue is full, entry dropped", e.ID, e.Kind, e.Payer, e.Points)
		}
	}
}

// Start - запускает воркер в фоне
func (w *JournalWorker) Start(ctx context.Context) {
	w.WaitGroup.Add(1)
	go w.Run(ctx)
}

// Stop - корректно останавливает воркер, дописывая накопленные записи
func (w *JournalWorker) Stop() {
	close(w.QuitChan)
	w.WaitGroup.Wait()
}

// Run - основная рабочая логика
func (w *JournalWorker) Run(ctx context.Context) {
	defer w.WaitGroup.Done()

	ticker := time.NewTicker(w.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.QuitChan:
			logger.Info("JournalWorker signal stop")
			w.Flush(ctx)
			return
		case <-ctx.Done():
			logger.Info("JournalWorker context done")
			return
		case e := <-w.Queue:
			if w.push(e) >= w.BatchSize {
				w.Flush(ctx)
			}
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush - забирает всё из очереди и пишет пачками по BatchSize.
// Неудачная пачка остаётся в буфере до следующей попытки, повторная запись идемпотентна по id.
func (w *JournalWorker) Flush(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collect()

	for len(w.pending) > 0 {
		n := min(w.BatchSize, len(w.pending))
		batch := w.pending[:n]
		_, err := w.Breaker.Execute(func() (interface{}, error) {
			return nil, w.Storage.AddEntries(ctx, batch)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				logger.Warn("Journal storage unavailable. Waiting...", w.Breaker.Name())
			} else {
				logger.Errorw("Error journal write", zap.Int("entries", n), zap.Error(err))
			}
			return
		}
		w.pending = w.pending[n:]
	}
	w.pending = nil
}

// Pending - количество записей, ожидающих записи в хранилище
func (w *JournalWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) + len(w.Queue)
}

func (w *JournalWorker) push(e models.JournalEntry) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, e)
	return len(w.pending)
}

// collect вызывается под w.mu
func (w *JournalWorker) collect() {
	for {
		select {
		case e := <-w.Queue:
			w.pending = append(w.pending, e)
		default:
			if over := len(w.pending) - w.MaxPending; over > 0 {
				logger.Warn("Journal buffer overflow, oldest entries dropped", over)
				w.pending = w.pending[over:]
			}
			return
		}
	}
}
