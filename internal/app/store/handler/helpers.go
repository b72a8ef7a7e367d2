package handler

import (
	"net/http"

	"homenest/internal/app/store/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// currentUserID достает ID пользователя, установленный Authenticate.
// При отсутствии отвечает 401 и возвращает false.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID"})
		return uuid.Nil, false
	}

	return userID, true
}

// currentRole достает роль из контекста, по умолчанию обычный пользователь
func currentRole(c *gin.Context) entity.Role {
	value, exists := c.Get("role")
	if !exists {
		return entity.RoleUser
	}
	role, ok := value.(entity.Role)
	if !ok {
		return entity.RoleUser
	}
	return role
}

// formatValidationError возвращает человекочитаемое описание первой
// ошибки валидации
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
