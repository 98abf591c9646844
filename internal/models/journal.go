package models

import "time"

// Типы записей журнала
const (
	JournalKindTransaction = "transaction"
	JournalKindSpend       = "spend"
)

// JournalEntry - запись аудиторского журнала операций
type JournalEntry struct {
	ID         string    `json:"id"`
	SpendID    string    `json:"spend_id,omitempty"`
	Kind       string    `json:"kind"`
	Payer      string    `json:"payer"`
	Points     int64     `json:"points"`
	Timestamp  time.Time `json:"timestamp"`
	RecordedAt time.Time `json:"recorded_at"`
}
