package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/denmor86/ya-payerpoints/internal/ledger"
	"github.com/denmor86/ya-payerpoints/internal/logger"
	"github.com/denmor86/ya-payerpoints/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNegativeBalance   = errors.New("payer records cannot have negative balance")
	ErrInsufficientFunds = errors.New("not enough points")
)

// Journal - приёмник записей аудиторского журнала
type Journal interface {
	Record(entries ...models.JournalEntry)
}

type PointsService interface {
	Ingest(ctx context.Context, payer string, points int64, timestamp time.Time) error
	Spend(ctx context.Context, amount int64) ([]models.SpendLine, error)
	GetPayerBalances(ctx context.Context) []models.PayerBalance
	Balance(ctx context.Context) int64
	Records(ctx context.Context) []models.TransactionRecord
}

// Points - менеджер баллов: владеет журналом записей и балансами плательщиков.
// Все изменения выполняются под одной блокировкой, по одной операции за раз.
type Points struct {
	mu      sync.RWMutex
	book    *ledger.Ledger
	payers  map[string]*models.PayerBalance
	order   []string
	balance int64
	journal Journal
}

// Создание сервиса
func NewPoints(book *ledger.Ledger, journal Journal) *Points {
	if book == nil {
		book = ledger.New()
	}
	return &Points{
		book:    book,
		payers:  make(map[string]*models.PayerBalance),
		journal: journal,
	}
}

// Ingest обрабатывает транзакцию плательщика: положительная добавляет запись в журнал,
// отрицательная списывает баллы с ранних записей того же плательщика
func (s *Points) Ingest(ctx context.Context, payer string, points int64, timestamp time.Time) error {
	if strings.TrimSpace(payer) == "" {
		return fmt.Errorf("%w: payer is empty", ErrInvalidRequest)
	}
	if points == 0 {
		return fmt.Errorf("%w: points must be non-zero", ErrInvalidRequest)
	}
	timestamp = timestamp.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	// общий баланс ограничивает сверху баланс каждого плательщика и сумму записей
	if points > 0 && points > math.MaxInt64-s.balance {
		logger.Warn("Transaction overflows aggregate balance", payer, s.balance, points)
		return fmt.Errorf("%w: points overflow aggregate balance", ErrInvalidRequest)
	}

	balance := s.payer(payer)

	if points < 0 {
		need := -points
		if balance.Points < need {
			logger.Warn("Negative transaction exceeds payer balance", payer, balance.Points, need)
			return ErrNegativeBalance
		}
		if err := s.book.DeductForPayer(payer, need); err != nil {
			logger.Errorw("Ledger diverged from payer balance", zap.String("payer", payer), zap.Error(err))
			return fmt.Errorf("deduct payer points: %w", err)
		}
		balance.Points -= need
		s.balance -= need
	} else {
		record := models.TransactionRecord{
			ID:        uuid.New().String(),
			Payer:     payer,
			Points:    points,
			Timestamp: timestamp,
		}
		if err := s.book.InsertPositive(record); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		balance.Points += points
		s.balance += points
	}

	s.record(models.JournalEntry{
		ID:         uuid.New().String(),
		Kind:       models.JournalKindTransaction,
		Payer:      payer,
		Points:     points,
		Timestamp:  timestamp,
		RecordedAt: time.Now().UTC(),
	})
	return nil
}

// Spend списывает баллы начиная с самых ранних записей, независимо от плательщика.
// Чек содержит по строке на каждую затронутую запись.
func (s *Points) Spend(ctx context.Context, amount int64) ([]models.SpendLine, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: expendable points must be positive", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if amount > s.balance || amount > s.book.Total() {
		return nil, ErrInsufficientFunds
	}

	receipt := make([]models.SpendLine, 0)
	remaining := amount
	for remaining > 0 {
		record, err := s.book.TakeEarliest()
		if err != nil {
			logger.Errorw("Ledger exhausted before spend completed", zap.Int64("remaining", remaining), zap.Error(err))
			return receipt, fmt.Errorf("take earliest record: %w", err)
		}
		take := min(remaining, record.Points)

		s.payer(record.Payer).Points -= take
		s.balance -= take
		remaining -= take
		receipt = append(receipt, models.SpendLine{Payer: record.Payer, Points: -take})

		if take < record.Points {
			record.Points -= take
			if err := s.book.ReinsertPositive(record); err != nil {
				return receipt, fmt.Errorf("reinsert record: %w", err)
			}
			break
		}
	}

	if len(receipt) > 0 {
		spendID := uuid.New().String()
		now := time.Now().UTC()
		entries := make([]models.JournalEntry, 0, len(receipt))
		for _, line := range receipt {
			entries = append(entries, models.JournalEntry{
				ID:         uuid.New().String(),
				SpendID:    spendID,
				Kind:       models.JournalKindSpend,
				Payer:      line.Payer,
				Points:     line.Points,
				Timestamp:  now,
				RecordedAt: now,
			})
		}
		s.record(entries...)
	}
	return receipt, nil
}

// GetPayerBalances возвращает балансы всех известных плательщиков в порядке появления
func (s *Points) GetPayerBalances(ctx context.Context) []models.PayerBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balances := make([]models.PayerBalance, 0, len(s.order))
	for _, payer := range s.order {
		balances = append(balances, *s.payers[payer])
	}
	return balances
}

// Balance сумма баллов всех плательщиков
func (s *Points) Balance(ctx context.Context) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Records записи журнала от ранних к поздним
func (s *Points) Records(ctx context.Context) []models.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.Snapshot()
}

// RecordsCount количество записей в журнале
func (s *Points) RecordsCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.Len()
}

// payer возвращает баланс плательщика, создавая его при первом обращении.
// Вызывается под блокировкой.
func (s *Points) payer(name string) *models.PayerBalance {
	balance, ok := s.payers[name]
	if !ok {
		balance = &models.PayerBalance{Payer: name}
		s.payers[name] = balance
		s.order = append(s.order, name)
	}
	return balance
}

func (s *Points) record(entries ...models.JournalEntry) {
	if s.journal == nil {
		return
	}
	s.journal.Record(entries...)
}
