package service

import (
	"context"
	"fmt"
	"time"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/repository"
)

// SupportService обрабатывает форму обратной связи и отзывы клиентов
// для главной страницы
type SupportService struct {
	contactRepo     repository.ContactRepository
	testimonialRepo repository.TestimonialRepository
}

// NewSupportService создает новый сервис поддержки
func NewSupportService(contactRepo repository.ContactRepository, testimonialRepo repository.TestimonialRepository) *SupportService {
	return &SupportService{
		contactRepo:     contactRepo,
		testimonialRepo: testimonialRepo,
	}
}

// SubmitContact сохраняет сообщение из формы обратной связи
func (s *SupportService) SubmitContact(ctx context.Context, req *entity.ContactRequest) (*entity.Contact, error) {
	// Контакты хранятся в pgx-репозитории, autoCreateTime здесь не работает
	contact := &entity.Contact{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}

	return contact, nil
}

// GetContacts возвращает все сообщения обратной связи (админ)
func (s *SupportService) GetContacts(ctx context.Context) ([]entity.Contact, error) {
	contacts, err := s.contactRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact messages: %w", err)
	}
	return contacts, nil
}

// CreateTestimonial добавляет отзыв клиента (админ)
func (s *SupportService) CreateTestimonial(ctx context.Context, req *entity.CreateTestimonialRequest) (*entity.Testimonial, error) {
	testimonial := &entity.Testimonial{
		Name:     req.Name,
		Location: req.Location,
		Text:     req.Text,
		Rating:   req.Rating,
		Avatar:   req.Avatar,
	}

	if err := s.testimonialRepo.Create(ctx, testimonial); err != nil {
		return nil, fmt.Errorf("failed to create testimonial: %w", err)
	}

	return testimonial, nil
}

// GetTestimonials возвращает отзывы клиентов для главной страницы
func (s *SupportService) GetTestimonials(ctx context.Context) ([]entity.Testimonial, error) {
	testimonials, err := s.testimonialRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get testimonials: %w", err)
	}
	return testimonials, nil
}
