package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/infrastructure"
	"homenest/internal/app/store/repository"
	"homenest/pkg/logger"
	"homenest/pkg/metrics"
)

// ReviewService обрабатывает отзывы на товары.
// Средний рейтинг и счетчик отзывов товара пересчитываются
// в транзакции вставки, читатели видят согласованные значения.
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	kafkaProducer infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов
func NewReviewService(reviewRepo repository.ReviewRepository, kafkaProducer infrastructure.MessagePublisher) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview создает отзыв и возвращает его вместе с новым
// агрегатом товара
func (s *ReviewService) CreateReview(ctx context.Context, req *entity.CreateReviewRequest) (*entity.Review, float64, int, error) {
	review := &entity.Review{
		ProductID:    req.ProductID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		ReviewerName: req.ReviewerName,
		Pictures:     req.Pictures,
	}

	rating, count, err := s.reviewRepo.CreateAndAggregate(ctx, review)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, 0, 0, ErrProductNotFound
		}
		return nil, 0, 0, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.Inc()

	s.publishReviewEvent(ctx, review)

	return review, rating, count, nil
}

// GetProductReviews возвращает отзывы товара, новые первыми
func (s *ReviewService) GetProductReviews(ctx context.Context, productID int) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviews, nil
}

// publishReviewEvent отправляет REVIEW_CREATED в Kafka, ошибки логируются
func (s *ReviewService) publishReviewEvent(ctx context.Context, review *entity.Review) {
	if s.kafkaProducer == nil {
		return
	}

	event := entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Int("review_id", review.ID).Msg("failed to marshal review event")
		return
	}

	// Ключ - ID товара, события одного товара сохраняют порядок
	if err := s.kafkaProducer.PublishMessage(ctx, strconv.Itoa(review.ProductID), data); err != nil {
		logger.Error().Err(err).Int("review_id", review.ID).Msg("failed to publish review event")
	}
}
