package handler

import (
	"net/http"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// SupportHandler обрабатывает форму обратной связи и отзывы клиентов
type SupportHandler struct {
	supportService *service.SupportService
	validator      *validator.Validate
}

// NewSupportHandler создает новый обработчик поддержки
func NewSupportHandler(supportService *service.SupportService) *SupportHandler {
	return &SupportHandler{
		supportService: supportService,
		validator:      validator.New(),
	}
}

// SubmitContact обрабатывает POST /contact (публичный)
func (h *SupportHandler) SubmitContact(c *gin.Context) {
	var req entity.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	contact, err := h.supportService.SubmitContact(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit message"})
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// GetContacts обрабатывает GET /admin/contacts
func (h *SupportHandler) GetContacts(c *gin.Context) {
	contacts, err := h.supportService.GetContacts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get messages"})
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// GetTestimonials обрабатывает GET /testimonials (публичный)
func (h *SupportHandler) GetTestimonials(c *gin.Context) {
	testimonials, err := h.supportService.GetTestimonials(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get testimonials"})
		return
	}

	c.JSON(http.StatusOK, testimonials)
}

// CreateTestimonial обрабатывает POST /admin/testimonials
func (h *SupportHandler) CreateTestimonial(c *gin.Context) {
	var req entity.CreateTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	testimonial, err := h.supportService.CreateTestimonial(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create testimonial"})
		return
	}

	c.JSON(http.StatusCreated, testimonial)
}
