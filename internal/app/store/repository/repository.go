package repository

import (
	"context"
	"errors"
	"fmt"

	"homenest/internal/app/store/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrProductNotFound         = errors.New("product not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCategoryAlreadyExists   = errors.New("category with this id already exists")
	ErrCategoryHasProducts     = errors.New("cannot delete category with existing products")
	ErrCategoryHasChildren     = errors.New("cannot delete category with existing subcategories")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrUserNotFound            = errors.New("user not found")
	ErrEmailTaken              = errors.New("user with this email already exists")
	ErrAddressNotFound         = errors.New("address not found")
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrAlreadyInWishlist       = errors.New("product already in wishlist")
)

// InsufficientStockError возвращается из транзакции создания заказа,
// когда запрошенное количество превышает остаток на складе.
// Сообщение безопасно для показа покупателю.
type InsufficientStockError struct {
	ProductID   int
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []int) ([]entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product, categoryIDs []string) error
	Delete(ctx context.Context, id int) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
}

type OrderRepository interface {
	// Create выполняет всю транзакцию оформления заказа: блокировку товаров,
	// проверку и списание остатков, вставку заказа, позиций и уведомлений
	Create(ctx context.Context, order *entity.Order, notifications []entity.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	GetAll(ctx context.Context) ([]entity.Order, error)
	CountAll(ctx context.Context) (int64, error)
	// UpdateStatus атомарно меняет статус; переход в Cancelled возвращает
	// остатки на склад в той же транзакции
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus, notification *entity.Notification) (*entity.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReviewRepository interface {
	// CreateAndAggregate вставляет отзыв и в той же транзакции пересчитывает
	// денормализованные rating и reviews у товара
	CreateAndAggregate(ctx context.Context, review *entity.Review) (rating float64, count int, err error)
	GetByProductID(ctx context.Context, productID int) ([]entity.Review, error)
}

type NotificationRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error)
	ListForAdmin(ctx context.Context) ([]entity.Notification, error)
	// MarkRead ограничен видимостью вызывающего: пользователь помечает
	// только свои уведомления, администратор еще и админ-поток
	MarkRead(ctx context.Context, id, userID uuid.UUID, role entity.Role) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	GetRefsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.UserRef, error)
}

type ContactRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	GetAll(ctx context.Context) ([]entity.Contact, error)
}

type AddressRepository interface {
	Create(ctx context.Context, address *entity.Address) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Address, error)
	Update(ctx context.Context, address *entity.Address) error
	Delete(ctx context.Context, id int, userID uuid.UUID) error
}

type WishlistRepository interface {
	Add(ctx context.Context, item *entity.WishlistItem) error
	Remove(ctx context.Context, userID uuid.UUID, productID int) error
	ProductIDs(ctx context.Context, userID uuid.UUID) ([]int, error)
}

type TestimonialRepository interface {
	Create(ctx context.Context, testimonial *entity.Testimonial) error
	GetAll(ctx context.Context) ([]entity.Testimonial, error)
}
