// Package calendar описывает зеркалирование записей во внешний календарь.
// Сам бекенд источником истины остается всегда: ошибки календаря не
// блокируют операции с записями.
package calendar

import (
	"context"
	"time"
)

// Статусы события во внешнем календаре.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Entry — данные записи, уходящие в календарь
type Entry struct {
	Start     time.Time
	End       *time.Time
	Title     string
	StaffInfo string
	PetBreed  string
}

// ChangedEntry — событие календаря, измененное на внешней стороне.
// Приходит при обработке webhook-уведомления.
type ChangedEntry struct {
	EventID string // внешний ID события
	Status  string // confirmed | cancelled
	Updated time.Time
}

// Syncer зеркалирует записи во внешний календарь
type Syncer interface {
	// Insert создает событие в календаре, возвращает внешний ID
	Insert(ctx context.Context, entry Entry) (string, error)

	// Delete удаляет событие календаря по внешнему ID
	Delete(ctx context.Context, eventID string) error

	// ChangedSince возвращает события календаря, измененные после since.
	// Используется webhook-обработчиком: уведомление не говорит, что
	// именно поменялось, изменения надо вытянуть.
	ChangedSince(ctx context.Context, since time.Time) ([]ChangedEntry, error)
}

// Noop — заглушка для окружений без подключенного календаря.
// Все операции успешны и ничего не делают.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Insert(_ context.Context, _ Entry) (string, error) { return "", nil }

func (n *Noop) Delete(_ context.Context, _ string) error { return nil }

func (n *Noop) ChangedSince(_ context.Context, _ time.Time) ([]ChangedEntry, error) {
	return nil, nil
}
