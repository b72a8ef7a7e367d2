package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound         = errors.New("product not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCategoryAlreadyExists   = errors.New("category with this id already exists")
	ErrCategoryHasProducts     = errors.New("cannot delete category with existing products")
	ErrCategoryHasChildren     = errors.New("cannot delete category with existing subcategories")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrEmailTaken              = errors.New("user with this email already exists")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrUserNotFound            = errors.New("user not found")
	ErrAddressNotFound         = errors.New("address not found")
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrAlreadyInWishlist       = errors.New("product already in wishlist")
	ErrUnauthorized            = errors.New("unauthorized access")
)
