package repository

import (
	"context"
	"errors"

	"homenest/internal/app/store/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create выполняет оформление заказа одной транзакцией:
// 1. Блокирует строку каждого товара (SELECT ... FOR UPDATE)
// 2. Проверяет остаток; нехватка отменяет всю транзакцию
// 3. Списывает остатки
// 4. Вставляет заказ, снимки позиций и уведомления
// Любая ошибка откатывает все: частичных списаний не остается.
func (r *orderRepository) Create(ctx context.Context, order *entity.Order, notifications []entity.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var product entity.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", item.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}

			if product.Stock < item.Quantity {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Stock,
				}
			}

			err = tx.Model(&entity.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}

		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}

		if err := tx.Create(&order.Items).Error; err != nil {
			return err
		}

		if len(notifications) > 0 {
			if err := tx.Create(&notifications).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByID получает заказ с позициями
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}

	return &order, nil
}

// GetByUserID получает заказы пользователя с позициями, новые первыми
func (r *orderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders)

	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// GetAll получает все заказы с позициями, новые первыми
func (r *orderRepository) GetAll(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders)

	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// CountAll возвращает общее число заказов для генерации номера.
// Номер, производный от COUNT(*), не защищен от гонки при одновременном
// оформлении: для строгой уникальности нужна последовательность БД
// или unique constraint с повтором.
func (r *orderRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Order{}).Count(&count)
	return count, result.Error
}

// UpdateStatus атомарно переводит заказ в новый статус.
// Переход в Cancelled возвращает остатки по каждой позиции в той же
// транзакции; повторная отмена невозможна, так как Cancelled терминален.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus, notification *entity.Notification) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !order.Status.CanTransition(status) {
			return ErrInvalidStatusTransition
		}

		if status == entity.OrderStatusCancelled {
			var items []entity.OrderItem
			if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
				return err
			}

			for _, item := range items {
				err := tx.Model(&entity.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
				if err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&entity.Order{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			return err
		}
		order.Status = status

		if notification != nil {
			notification.OrderID = order.ID
			notification.UserID = order.UserID
			if err := tx.Create(notification).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// Delete жестко удаляет заказ без возврата остатков.
// Административный аварийный выход, не часть обычного жизненного цикла;
// позиции удаляются через CASCADE.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Order{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
