package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/denmor86/ya-payerpoints/internal/models"
	"github.com/google/go-cmp/cmp"
)

var base = time.Date(2020, time.November, 2, 14, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func record(id, payer string, points int64, hours int) models.TransactionRecord {
	return models.TransactionRecord{ID: id, Payer: payer, Points: points, Timestamp: at(hours)}
}

func ids(records []models.TransactionRecord) []string {
	result := make([]string, 0, len(records))
	for _, r := range records {
		result = append(result, r.ID)
	}
	return result
}

func TestLedger_InsertPositive(t *testing.T) {
	testCases := []struct {
		TestName      string
		Records       []models.TransactionRecord
		ExpectedIDs   []string
		ExpectedTotal int64
	}{
		{
			TestName:      "Success. Empty ledger #1",
			Records:       nil,
			ExpectedIDs:   []string{},
			ExpectedTotal: 0,
		},
		{
			TestName: "Success. Out of order arrival #2",
			Records: []models.TransactionRecord{
				record("c", "DANNON", 300, 3),
				record("a", "UNILEVER", 200, 1),
				record("d", "MILLER COORS", 10000, 4),
				record("b", "DANNON", 1000, 2),
			},
			ExpectedIDs:   []string{"a", "b", "c", "d"},
			ExpectedTotal: 11500,
		},
		{
			TestName: "Success. Equal timestamps keep arrival order #3",
			Records: []models.TransactionRecord{
				record("p1", "DANNON", 100, 5),
				record("early", "UNILEVER", 100, 1),
				record("p2", "UNILEVER", 100, 5),
				record("p3", "DANNON", 100, 5),
				record("late", "DANNON", 100, 9),
			},
			ExpectedIDs:   []string{"early", "p1", "p2", "p3", "late"},
			ExpectedTotal: 500,
		},
		{
			TestName: "Success. Earliest goes to front #4",
			Records: []models.TransactionRecord{
				record("b", "DANNON", 1, 2),
				record("c", "DANNON", 1, 3),
				record("a", "DANNON", 1, 1),
			},
			ExpectedIDs:   []string{"a", "b", "c"},
			ExpectedTotal: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.TestName, func(t *testing.T) {
			l := New()
			for _, r := range tc.Records {
				if err := l.InsertPositive(r); err != nil {
					t.Fatalf("Expected no error, got: '%v'", err)
				}
			}
			diff := cmp.Diff(tc.ExpectedIDs, ids(l.Snapshot()))
			if len(diff) != 0 {
				t.Errorf("expected order mismatch:\n %s", diff)
			}
			if l.Total() != tc.ExpectedTotal {
				t.Errorf("Expected total: '%d', got: '%d'", tc.ExpectedTotal, l.Total())
			}
		})
	}
}

func TestLedger_InsertInvalid(t *testing.T) {
	l := New()
	for _, points := range []int64{0, -1} {
		if err := l.InsertPositive(record("x", "DANNON", points, 1)); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("Expected error '%v', got: '%v'", ErrInvalidRecord, err)
		}
		if err := l.ReinsertPositive(record("x", "DANNON", points, 1)); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("Expected error '%v', got: '%v'", ErrInvalidRecord, err)
		}
	}
	if l.Len() != 0 {
		t.Errorf("Expected empty ledger, got %d records", l.Len())
	}
}

func TestLedger_InsertOverflow(t *testing.T) {
	l := New()
	if err := l.InsertPositive(record("a", "DANNON", math.MaxInt64, 1)); err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if err := l.InsertPositive(record("b", "DANNON", 1, 2)); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Expected error '%v', got: '%v'", ErrInvalidRecord, err)
	}
	if l.Len() != 1 || l.Total() != math.MaxInt64 {
		t.Errorf("Expected ledger untouched, got %d records, total %d", l.Len(), l.Total())
	}
}

func TestLedger_DeductForPayer(t *testing.T) {
	seed := func() *Ledger {
		l := New()
		for _, r := range []models.TransactionRecord{
			record("d1", "DANNON", 300, 1),
			record("u1", "UNILEVER", 200, 2),
			record("d2", "DANNON", 400, 3),
			record("m1", "MILLER COORS", 1000, 4),
		} {
			_ = l.InsertPositive(r)
		}
		return l
	}

	testCases := []struct {
		TestName        string
		Payer           string
		Amount          int64
		ExpectedError   error
		ExpectedRecords []models.TransactionRecord
	}{
		{
			TestName:      "Error. Zero amount #1",
			Payer:         "DANNON",
			Amount:        0,
			ExpectedError: ErrInvalidRecord,
			ExpectedRecords: []models.TransactionRecord{
				record("d1", "DANNON", 300, 1),
				record("u1", "UNILEVER", 200, 2),
				record("d2", "DANNON", 400, 3),
				record("m1", "MILLER COORS", 1000, 4),
			},
		},
		{
			TestName: "Success. Partial reduce of earliest payer record #2",
			Payer:    "DANNON",
			Amount:   200,
			ExpectedRecords: []models.TransactionRecord{
				record("d1", "DANNON", 100, 1),
				record("u1", "UNILEVER", 200, 2),
				record("d2", "DANNON", 400, 3),
				record("m1", "MILLER COORS", 1000, 4),
			},
		},
		{
			TestName: "Success. Exhausted record removed, next reduced #3",
			Payer:    "DANNON",
			Amount:   500,
			ExpectedRecords: []models.TransactionRecord{
				record("u1", "UNILEVER", 200, 2),
				record("d2", "DANNON", 200, 3),
				record("m1", "MILLER COORS", 1000, 4),
			},
		},
		{
			TestName: "Success. All payer records consumed #4",
			Payer:    "DANNON",
			Amount:   700,
			ExpectedRecords: []models.TransactionRecord{
				record("u1", "UNILEVER", 200, 2),
				record("m1", "MILLER COORS", 1000, 4),
			},
		},
		{
			TestName:      "Error. Shortfall leaves ledger untouched #5",
			Payer:         "DANNON",
			Amount:        701,
			ExpectedError: ErrInsufficientFunds,
			ExpectedRecords: []models.TransactionRecord{
				record("d1", "DANNON", 300, 1),
				record("u1", "UNILEVER", 200, 2),
				record("d2", "DANNON", 400, 3),
				record("m1", "MILLER COORS", 1000, 4),
			},
		},
		{
			TestName:      "Error. Unknown payer #6",
			Payer:         "NESTLE",
			Amount:        1,
			ExpectedError: ErrInsufficientFunds,
			ExpectedRecords: []models.TransactionRecord{
				record("d1", "DANNON", 300, 1),
				record("u1", "UNILEVER", 200, 2),
				record("d2", "DANNON", 400, 3),
				record("m1", "MILLER COORS", 1000, 4),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.TestName, func(t *testing.T) {
			l := seed()
			before := l.Total()

			err := l.DeductForPayer(tc.Payer, tc.Amount)

			if err != nil && tc.ExpectedError == nil {
				t.Errorf("Expected no error, got: '%v'", err)
			} else if err == nil && tc.ExpectedError != nil {
				t.Errorf("Expected error, got none")
			} else if err != nil && !errors.Is(err, tc.ExpectedError) {
				t.Errorf("Expected error '%v', got: '%v'", tc.ExpectedError, err)
			}
			diff := cmp.Diff(tc.ExpectedRecords, l.Snapshot())
			if len(diff) != 0 {
				t.Errorf("expected records mismatch:\n %s", diff)
			}
			expectedTotal := before
			if tc.ExpectedError == nil {
				expectedTotal -= tc.Amount
			}
			if l.Total() != expectedTotal {
				t.Errorf("Expected total: '%d', got: '%d'", expectedTotal, l.Total())
			}
		})
	}
}

func TestLedger_ShortfallRemaining(t *testing.T) {
	l := New()
	_ = l.InsertPositive(record("d1", "DANNON", 300, 1))

	err := l.DeductForPayer("DANNON", 450)

	var shortfall *ShortfallError
	if !errors.As(err, &shortfall) {
		t.Fatalf("Expected shortfall error, got: '%v'", err)
	}
	if shortfall.Remaining != 150 || shortfall.Payer != "DANNON" {
		t.Errorf("Expected DANNON remaining 150, got: %s %d", shortfall.Payer, shortfall.Remaining)
	}
}

func TestLedger_TakeEarliestAndReinsert(t *testing.T) {
	l := New()
	if _, err := l.TakeEarliest(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected error '%v', got: '%v'", ErrNotFound, err)
	}

	_ = l.InsertPositive(record("p1", "DANNON", 100, 5))
	_ = l.InsertPositive(record("p2", "UNILEVER", 100, 5))
	_ = l.InsertPositive(record("later", "DANNON", 100, 6))

	first, err := l.TakeEarliest()
	if err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	if first.ID != "p1" {
		t.Errorf("Expected p1 first, got %s", first.ID)
	}

	first.Points = 40
	if err := l.ReinsertPositive(first); err != nil {
		t.Fatalf("Expected no error, got: '%v'", err)
	}
	diff := cmp.Diff([]string{"p1", "p2", "later"}, ids(l.Snapshot()))
	if len(diff) != 0 {
		t.Errorf("expected order mismatch:\n %s", diff)
	}
	if l.Total() != 240 {
		t.Errorf("Expected total 240, got %d", l.Total())
	}
}

func TestLedger_SnapshotIsCopy(t *testing.T) {
	l := New()
	_ = l.InsertPositive(record("a", "DANNON", 100, 1))

	snapshot := l.Snapshot()
	snapshot[0].Points = 1

	if l.Snapshot()[0].Points != 100 {
		t.Errorf("Snapshot must not alias ledger storage")
	}
}
