package helper

import (
	"context"
	"time"
)

// DelaySchedule — пауза перед повтором attempt (нумерация с 1).
type DelaySchedule func(attempt int) time.Duration

// LinearDelay — 1s, 2s, 3s... (sleep = номер попытки).
func LinearDelay(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

// FixedDelay — одинаковая пауза между попытками.
func FixedDelay(d time.Duration) DelaySchedule {
	return func(int) time.Duration { return d }
}

// Retry — единый ретрай-комбинатор для обоих RPC-клиентов вместо
// размазанных while-true-with-sleep. Возвращает последнюю ошибку,
// если все attempts исчерпаны; прерывается по ctx.
func Retry(ctx context.Context, attempts int, delay DelaySchedule, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay(attempt)):
		}
	}
	return err
}
