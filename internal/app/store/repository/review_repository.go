package repository

import (
	"context"
	"errors"

	"homenest/internal/app/store/entity"

	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// CreateAndAggregate вставляет отзыв и в той же транзакции пересчитывает
// rating (среднее арифметическое) и reviews (количество) владеющего товара,
// чтобы денормализованные поля не расходились с набором отзывов.
func (r *reviewRepository) CreateAndAggregate(ctx context.Context, review *entity.Review) (float64, int, error) {
	var rating float64
	var count int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product entity.Product
		err := tx.First(&product, "id = ?", review.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if err := tx.Create(review).Error; err != nil {
			return err
		}

		var ratings []int
		if err := tx.Model(&entity.Review{}).
			Where("product_id = ?", review.ProductID).
			Pluck("rating", &ratings).Error; err != nil {
			return err
		}

		var sum int
		for _, v := range ratings {
			sum += v
		}
		count = len(ratings)
		rating = float64(sum) / float64(count)

		return tx.Model(&entity.Product{}).
			Where("id = ?", review.ProductID).
			Updates(map[string]interface{}{
				"rating":  rating,
				"reviews": count,
			}).Error
	})

	if err != nil {
		return 0, 0, err
	}

	return rating, count, nil
}

// GetByProductID получает отзывы товара, новые первыми
func (r *reviewRepository) GetByProductID(ctx context.Context, productID int) ([]entity.Review, error) {
	var reviews []entity.Review
	result := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews)

	if result.Error != nil {
		return nil, result.Error
	}

	return reviews, nil
}
