package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/denmor86/ya-payerpoints/internal/logger"
	"github.com/denmor86/ya-payerpoints/internal/models"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	InsertEntry = `INSERT INTO JOURNAL (id, spend_id, kind, payer, points, occurred_at, recorded_at)
						VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7)
						ON CONFLICT (id) DO NOTHING;`
	GetEntries = `SELECT id::text, COALESCE(spend_id::text, ''), kind, payer, points, occurred_at, recorded_at
					FROM JOURNAL ORDER BY seq DESC LIMIT $1;`
)

type JournalDatabase struct {
	DB *Database
}

// Создание хранилища
func NewJournalStorage(db *Database) JournalStorage {
	return &JournalDatabase{DB: db}
}

// AddEntries - запись пачки записей журнала в одной транзакции
func (s *JournalDatabase) AddEntries(ctx context.Context, entries []models.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.DB.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Гарантированный откат при ошибке
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Errorw("Journal. Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(InsertEntry, e.ID, e.SpendID, e.Kind, e.Payer, e.Points, e.Timestamp, e.RecordedAt)
	}
	// записи, сохранённые прошлой попыткой, пропускаются по id
	err = tx.SendBatch(ctx, batch).Close()
	if err != nil {
		return fmt.Errorf("insert journal entries: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// GetEntries - последние записи журнала, от новых к старым
func (s *JournalDatabase) GetEntries(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	rows, err := s.DB.Pool.Query(ctx, GetEntries, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         string
			spendID    string
			kind       string
			payer      string
			points     int64
			occurredAt time.Time
			recordedAt time.Time
		)
		err := rows.Scan(&id, &spendID, &kind, &payer, &points, &occurredAt, &recordedAt)
		if err != nil {
			return entries, fmt.Errorf("failed scan journal entry: %w", err)
		}
		entries = append(entries, models.JournalEntry{
			ID:         id,
			SpendID:    spendID,
			Kind:       kind,
			Payer:      payer,
			Points:     points,
			Timestamp:  occurredAt.UTC(),
			RecordedAt: recordedAt.UTC(),
		})
	}
	return entries, rows.Err()
}
