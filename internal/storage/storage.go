package storage

import (
	"context"

	"github.com/denmor86/ya-payerpoints/internal/models"
)

// JournalStorage хранилище аудиторского журнала операций с баллами
type JournalStorage interface {
	AddEntries(ctx context.Context, entries []models.JournalEntry) error
	GetEntries(ctx context.Context, limit int) ([]models.JournalEntry, error)
}
