package service

import (
	"context"
	"errors"
	"fmt"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/repository"

	"github.com/google/uuid"
)

// AccountService обрабатывает личный кабинет:
// адреса, список желаний и уведомления
type AccountService struct {
	addressRepo      repository.AddressRepository
	wishlistRepo     repository.WishlistRepository
	notificationRepo repository.NotificationRepository
	productRepo      repository.ProductRepository
}

// NewAccountService создает новый сервис личного кабинета
func NewAccountService(
	addressRepo repository.AddressRepository,
	wishlistRepo repository.WishlistRepository,
	notificationRepo repository.NotificationRepository,
	productRepo repository.ProductRepository,
) *AccountService {
	return &AccountService{
		addressRepo:      addressRepo,
		wishlistRepo:     wishlistRepo,
		notificationRepo: notificationRepo,
		productRepo:      productRepo,
	}
}

// === Адреса ===

// CreateAddress сохраняет адрес доставки пользователя
func (s *AccountService) CreateAddress(ctx context.Context, userID uuid.UUID, req *entity.CreateAddressRequest) (*entity.Address, error) {
	address := &entity.Address{
		UserID:     userID,
		Label:      req.Label,
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		IsDefault:  req.IsDefault,
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return address, nil
}

// GetAddresses возвращает адреса пользователя
func (s *AccountService) GetAddresses(ctx context.Context, userID uuid.UUID) ([]entity.Address, error) {
	addresses, err := s.addressRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}
	return addresses, nil
}

// UpdateAddress обновляет адрес, принадлежащий пользователю
func (s *AccountService) UpdateAddress(ctx context.Context, id int, userID uuid.UUID, req *entity.CreateAddressRequest) (*entity.Address, error) {
	address := &entity.Address{
		ID:         id,
		UserID:     userID,
		Label:      req.Label,
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		IsDefault:  req.IsDefault,
	}

	if err := s.addressRepo.Update(ctx, address); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return address, nil
}

// DeleteAddress удаляет адрес, принадлежащий пользователю
func (s *AccountService) DeleteAddress(ctx context.Context, id int, userID uuid.UUID) error {
	if err := s.addressRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

// === Список желаний ===

// AddToWishlist добавляет товар в список желаний.
// Повторное добавление того же товара отклоняется.
func (s *AccountService) AddToWishlist(ctx context.Context, userID uuid.UUID, productID int) error {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to check product: %w", err)
	}

	item := &entity.WishlistItem{
		UserID:    userID,
		ProductID: productID,
	}

	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		if errors.Is(err, repository.ErrAlreadyInWishlist) {
			return ErrAlreadyInWishlist
		}
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}

	return nil
}

// RemoveFromWishlist убирает товар из списка желаний
func (s *AccountService) RemoveFromWishlist(ctx context.Context, userID uuid.UUID, productID int) error {
	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

// GetWishlist возвращает товары из списка желаний.
// Удаленные из каталога товары молча выпадают из выдачи.
func (s *AccountService) GetWishlist(ctx context.Context, userID uuid.UUID) ([]entity.ProductResponse, error) {
	ids, err := s.wishlistRepo.ProductIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	if len(ids) == 0 {
		return []entity.ProductResponse{}, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist products: %w", err)
	}

	result := make([]entity.ProductResponse, len(products))
	for i, p := range products {
		result[i] = entity.BuildProductResponse(p)
	}
	return result, nil
}

// === Уведомления ===

// GetUserNotifications возвращает уведомления пользователя, новые первыми
func (s *AccountService) GetUserNotifications(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	notifications, err := s.notificationRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}

// GetAdminNotifications возвращает уведомления для администраторов
func (s *AccountService) GetAdminNotifications(ctx context.Context) ([]entity.Notification, error) {
	notifications, err := s.notificationRepo.ListForAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead помечает уведомление прочитанным.
// Чужие уведомления недоступны и отвечают как несуществующие.
func (s *AccountService) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID, role entity.Role) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
