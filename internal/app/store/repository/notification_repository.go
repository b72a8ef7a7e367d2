package repository

import (
	"context"

	"homenest/internal/app/store/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository создает новый репозиторий уведомлений
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	var notifications []entity.Notification
	result := r.db.WithContext(ctx).
		Where("audience = ? AND user_id = ?", entity.AudienceUser, userID).
		Order("created_at DESC").
		Find(&notifications)

	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}

// ListForAdmin возвращает поток уведомлений для админ-аудитории
func (r *notificationRepository) ListForAdmin(ctx context.Context) ([]entity.Notification, error) {
	var notifications []entity.Notification
	result := r.db.WithContext(ctx).
		Where("audience = ?", entity.AudienceAdmin).
		Order("created_at DESC").
		Find(&notifications)

	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}

// MarkRead помечает уведомление прочитанным в пределах видимости вызывающего:
// пользователь видит только свои уведомления, администратор еще и админ-поток.
// Чужое уведомление неотличимо от несуществующего.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID, role entity.Role) error {
	q := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ?", id)

	if role == entity.RoleAdmin {
		q = q.Where("audience = ? OR user_id = ?", entity.AudienceAdmin, userID)
	} else {
		q = q.Where("audience = ? AND user_id = ?", entity.AudienceUser, userID)
	}

	result := q.Update("is_read", true)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
