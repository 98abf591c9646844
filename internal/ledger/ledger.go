// Package ledger хранит положительные записи начислений, упорядоченные по времени.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/denmor86/ya-payerpoints/internal/models"
)

var (
	ErrInvalidRecord     = errors.New("record points must be positive")
	ErrInsufficientFunds = errors.New("not enough payer points in ledger")
	ErrNotFound          = errors.New("ledger is empty")
)

// ShortfallError - ошибка нехватки баллов плательщика при списании по отрицательной транзакции
type ShortfallError struct {
	Payer     string
	Remaining int64
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("not enough points to cover negative transaction of %s, remaining: %d", e.Payer, -e.Remaining)
}

func (e *ShortfallError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// deduction - шаг плана списания: индекс записи и сколько с неё снять
type deduction struct {
	index  int
	points int64
}

// Ledger - упорядоченная по возрастанию времени последовательность записей.
// Для равных меток времени сохраняется порядок поступления.
type Ledger struct {
	records []models.TransactionRecord
	total   int64
}

// New создание пустого журнала
func New() *Ledger {
	return &Ledger{}
}

// InsertPositive вставляет запись после всех записей с меньшей или равной меткой времени
func (l *Ledger) InsertPositive(record models.TransactionRecord) error {
	if err := l.checkRecord(record); err != nil {
		return err
	}
	index := sort.Search(len(l.records), func(i int) bool {
		return l.records[i].Timestamp.After(record.Timestamp)
	})
	l.insertAt(index, record)
	return nil
}

// ReinsertPositive возвращает частично потраченную запись.
// Запись встаёт перед записями с той же меткой времени, так как была взята из начала журнала.
func (l *Ledger) ReinsertPositive(record models.TransactionRecord) error {
	if err := l.checkRecord(record); err != nil {
		return err
	}
	index := sort.Search(len(l.records), func(i int) bool {
		return !l.records[i].Timestamp.Before(record.Timestamp)
	})
	l.insertAt(index, record)
	return nil
}

// DeductForPayer списывает amount баллов с самых ранних записей плательщика.
// Если баллов плательщика не хватает, журнал не изменяется.
func (l *Ledger) DeductForPayer(payer string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidRecord
	}
	plan, err := l.planDeduction(payer, amount)
	if err != nil {
		return err
	}
	l.applyDeduction(plan)
	return nil
}

// TakeEarliest извлекает самую раннюю запись
func (l *Ledger) TakeEarliest() (models.TransactionRecord, error) {
	if len(l.records) == 0 {
		return models.TransactionRecord{}, ErrNotFound
	}
	record := l.records[0]
	l.records[0] = models.TransactionRecord{}
	l.records = l.records[1:]
	l.total -= record.Points
	return record, nil
}

// Snapshot возвращает копию упорядоченной последовательности записей
func (l *Ledger) Snapshot() []models.TransactionRecord {
	snapshot := make([]models.TransactionRecord, len(l.records))
	copy(snapshot, l.records)
	return snapshot
}

// Len количество записей
func (l *Ledger) Len() int {
	return len(l.records)
}

// Total сумма баллов всех записей
func (l *Ledger) Total() int64 {
	return l.total
}

// checkRecord запись должна быть положительной и не переполнять сумму журнала
func (l *Ledger) checkRecord(record models.TransactionRecord) error {
	if record.Points <= 0 {
		return ErrInvalidRecord
	}
	if record.Points > math.MaxInt64-l.total {
		return fmt.Errorf("%w: total overflow", ErrInvalidRecord)
	}
	return nil
}

func (l *Ledger) insertAt(index int, record models.TransactionRecord) {
	l.records = append(l.records, models.TransactionRecord{})
	copy(l.records[index+1:], l.records[index:])
	l.records[index] = record
	l.total += record.Points
}

// planDeduction строит план списания без изменения журнала
func (l *Ledger) planDeduction(payer string, amount int64) ([]deduction, error) {
	var plan []deduction
	remaining := amount
	for i := 0; i < len(l.records) && remaining > 0; i++ {
		if l.records[i].Payer != payer {
			continue
		}
		take := min(remaining, l.records[i].Points)
		plan = append(plan, deduction{index: i, points: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, &ShortfallError{Payer: payer, Remaining: remaining}
	}
	return plan, nil
}

func (l *Ledger) applyDeduction(plan []deduction) {
	kept := l.records[:0]
	step := 0
	for i, record := range l.records {
		if step < len(plan) && plan[step].index == i {
			record.Points -= plan[step].points
			l.total -= plan[step].points
			step++
			// исчерпанные записи удаляются
			if record.Points == 0 {
				continue
			}
		}
		kept = append(kept, record)
	}
	// чистим хвост, чтобы не держать ссылки на удалённые записи
	for i := len(kept); i < len(l.records); i++ {
		l.records[i] = models.TransactionRecord{}
	}
	l.records = kept
}
