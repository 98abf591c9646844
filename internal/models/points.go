package models

import "time"

// TransactionRecord - запись о начислении баллов плательщиком, хранится в упорядоченном журнале
type TransactionRecord struct {
	ID        string    `json:"id"`
	Payer     string    `json:"payer"`
	Points    int64     `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// PayerBalance - текущий баланс баллов плательщика
type PayerBalance struct {
	Payer  string `json:"payer"`
	Points int64  `json:"points"`
}

// SpendLine - строка чека списания (баллы отрицательные)
type SpendLine struct {
	Payer  string `json:"payer"`
	Points int64  `json:"points"`
}

// TransactionRequest - модель запроса добавления транзакции, приходит извне
type TransactionRequest struct {
	Payer     string     `json:"payer" validate:"required,payer"`
	Points    *int64     `json:"points" validate:"required,ne=0"`
	Timestamp *time.Time `json:"timestamp" validate:"required"`
}

// SpendRequest - модель запроса списания баллов
type SpendRequest struct {
	Points *int64 `json:"points" validate:"required,gte=0"`
}

// BalanceResponse - суммарный баланс по всем плательщикам
type BalanceResponse struct {
	Points int64 `json:"points"`
}

// Response - общий конверт ответа API
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}
