package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/denmor86/ya-payerpoints/internal/helpers"
	"github.com/denmor86/ya-payerpoints/internal/ledger"
	"github.com/denmor86/ya-payerpoints/internal/logger"
	"github.com/denmor86/ya-payerpoints/internal/models"
	"github.com/denmor86/ya-payerpoints/internal/services"
	"github.com/denmor86/ya-payerpoints/internal/validators"
	"go.uber.org/zap"
)

const (
	TransactionFormatError = "Invalid transaction format. Please provide {payer:string, points:integer, timestamp:date}"
	SpendFormatError       = "Provide spend request in the form {'points':integer}"
)

// AddTransactionHandler - добавление транзакции плательщика
func AddTransactionHandler(s services.PointsService, v *validators.Validator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.TransactionRequest
		if err := decodeStrict(r, &req); err != nil {
			logger.Warn("Invalid transaction format:", err)
			helpers.WriteError(w, http.StatusBadRequest, TransactionFormatError, nil)
			return
		}
		if err := v.Struct(req); err != nil {
			logger.Warn("Invalid transaction:", err)
			helpers.WriteError(w, http.StatusBadRequest, TransactionFormatError, validators.Details(err))
			return
		}

		err := s.Ingest(r.Context(), req.Payer, *req.Points, *req.Timestamp)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusCreated, "Transaction successfully inserted")
	})
}

// SpendHandler - списание баллов, начиная с самых ранних
func SpendHandler(s services.PointsService, v *validators.Validator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.SpendRequest
		if err := decodeStrict(r, &req); err != nil {
			logger.Warn("Invalid spend request format:", err)
			helpers.WriteError(w, http.StatusBadRequest, SpendFormatError, nil)
			return
		}
		if err := v.Struct(req); err != nil {
			logger.Warn("Invalid spend request:", err)
			helpers.WriteError(w, http.StatusBadRequest, SpendFormatError, validators.Details(err))
			return
		}

		receipt, err := s.Spend(r.Context(), *req.Points)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		helpers.WriteJSON(w, http.StatusOK, receipt)
	})
}

// decodeStrict разбирает тело запроса, не допуская лишних полей и данных после объекта
func decodeStrict(r *http.Request, dst any) error {
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Error("Error to close body:", err)
		}
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

// writeServiceError переводит ошибки менеджера баллов в ответ клиенту
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, ledger.ErrInvalidRecord):
		helpers.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrNegativeBalance):
		helpers.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrInsufficientFunds):
		helpers.WriteError(w, http.StatusPaymentRequired, "You do not have enough points", nil)
	default:
		logger.Errorw("Failed to process points operation", zap.Error(err))
		helpers.WriteError(w, http.StatusInternalServerError, "Internal Server Error", nil)
	}
}
