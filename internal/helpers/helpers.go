package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/denmor86/ya-payerpoints/internal/logger"
	"github.com/denmor86/ya-payerpoints/internal/models"
	"go.uber.org/zap"
)

// ErrorData - описание ошибки в ответе, details заполняется при ошибках валидации
type ErrorData struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON - успешный ответ в общем конверте {success, data}
func WriteJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, models.Response{Success: true, Data: data})
}

// WriteError - ответ с ошибкой в общем конверте {success: false, data}
func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	var data any = message
	if len(details) != 0 {
		data = ErrorData{Message: message, Details: details}
	}
	write(w, status, models.Response{Success: false, Data: data})
}

func write(w http.ResponseWriter, status int, response models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorw("Failed to encode JSON response", zap.Error(err))
	}
}
