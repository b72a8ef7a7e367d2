package infrastructure

import (
	"context"

	"homenest/internal/app/store/entity"
)

// MessagePublisher - абстракция над продюсером событий домена.
// Публикация идет после коммита транзакции: ошибки логируются,
// но не откатывают уже сохраненный заказ или отзыв.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// OrderArchiver пишет снимок размещенного заказа в архивное хранилище
type OrderArchiver interface {
	ArchiveOrder(ctx context.Context, order *entity.Order) error
	Close(ctx context.Context) error
}
