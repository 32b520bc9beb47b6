package storage

import (
	"context"

	"pingpong_bot/internal/models"
)

// Store — персистентное состояние ядра: последний завершённый ордер
// каждой пары (единственное, что переживает рестарт и определяет сторону
// резюма) и депозитные адреса токенов.
type Store interface {
	// LoadOrder возвращает nil, nil если истории ещё нет.
	LoadOrder(ctx context.Context, key string) (*models.Order, error)
	SaveOrder(ctx context.Context, key string, order *models.Order) error

	// LoadAddress возвращает "" если адрес ещё не выдавался.
	LoadAddress(ctx context.Context, key string) (string, error)
	SaveAddress(ctx context.Context, key string, address string) error
}
