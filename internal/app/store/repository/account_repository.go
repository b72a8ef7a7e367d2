package repository

import (
	"context"
	"errors"

	"homenest/internal/app/store/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// === Addresses ===

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(ctx context.Context, address *entity.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *addressRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Address, error) {
	var addresses []entity.Address
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses)

	if result.Error != nil {
		return nil, result.Error
	}

	return addresses, nil
}

func (r *addressRepository) Update(ctx context.Context, address *entity.Address) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Address{}).
		Where("id = ? AND user_id = ?", address.ID, address.UserID).
		Updates(map[string]interface{}{
			"label":       address.Label,
			"name":        address.Name,
			"phone":       address.Phone,
			"address":     address.Address,
			"city":        address.City,
			"postal_code": address.PostalCode,
			"is_default":  address.IsDefault,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

func (r *addressRepository) Delete(ctx context.Context, id int, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entity.Address{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

// === Wishlist ===

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Add(ctx context.Context, item *entity.WishlistItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyInWishlist
		}
		return err
	}
	return nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID uuid.UUID, productID int) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&entity.WishlistItem{}).Error
}

func (r *wishlistRepository) ProductIDs(ctx context.Context, userID uuid.UUID) ([]int, error) {
	var ids []int
	result := r.db.WithContext(ctx).
		Model(&entity.WishlistItem{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("product_id", &ids)

	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

// === Testimonials ===

type testimonialRepository struct {
	db *gorm.DB
}

func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &testimonialRepository{db: db}
}

func (r *testimonialRepository) Create(ctx context.Context, testimonial *entity.Testimonial) error {
	return r.db.WithContext(ctx).Create(testimonial).Error
}

func (r *testimonialRepository) GetAll(ctx context.Context) ([]entity.Testimonial, error) {
	var testimonials []entity.Testimonial
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&testimonials)

	if result.Error != nil {
		return nil, result.Error
	}

	return testimonials, nil
}
