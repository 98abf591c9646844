package handlers

import (
	"net/http"
	"strconv"

	"github.com/denmor86/ya-payerpoints/internal/helpers"
	"github.com/denmor86/ya-payerpoints/internal/logger"
	"github.com/denmor86/ya-payerpoints/internal/models"
	"github.com/denmor86/ya-payerpoints/internal/services"
	"github.com/denmor86/ya-payerpoints/internal/storage"
	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

// GetPayersHandler - балансы плательщиков.
// Параметр ignoreZero=true скрывает плательщиков с нулевым балансом.
func GetPayersHandler(s services.PointsService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		balances := s.GetPayerBalances(r.Context())

		if ignore, _ := strconv.ParseBool(r.URL.Query().Get("ignoreZero")); ignore {
			filtered := make([]models.PayerBalance, 0, len(balances))
			for _, b := range balances {
				if b.Points != 0 {
					filtered = append(filtered, b)
				}
			}
			balances = filtered
		}
		helpers.WriteJSON(w, http.StatusOK, balances)
	})
}

// GetBalanceHandler - суммарный баланс по всем плательщикам
func GetBalanceHandler(s services.PointsService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, models.BalanceResponse{Points: s.Balance(r.Context())})
	})
}

// GetRecordsHandler - непотраченные записи от ранних к поздним
func GetRecordsHandler(s services.PointsService) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, s.Records(r.Context()))
	})
}

// GetHistoryHandler - последние записи аудиторского журнала
func GetHistoryHandler(j storage.JournalStorage) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			value, err := strconv.Atoi(raw)
			if err != nil || value <= 0 {
				logger.Warn("Invalid history limit", raw)
				helpers.WriteError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
				return
			}
			limit = min(value, MaxHistoryLimit)
		}

		entries, err := j.GetEntries(r.Context(), limit)
		if err != nil {
			logger.Errorw("Failed to get journal entries", zap.Error(err))
			helpers.WriteError(w, http.StatusInternalServerError, "Internal Server Error", nil)
			return
		}
		if len(entries) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, entries)
	})
}
