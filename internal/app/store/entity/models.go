package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product представляет товар в каталоге
type Product struct {
	ID               int         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name             string      `json:"name" gorm:"type:varchar(255);not null"`
	Price            float64     `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice    *float64    `json:"originalPrice,omitempty" gorm:"type:decimal(10,2)"` // Цена до скидки для отображения
	Image            string      `json:"image" gorm:"type:text"`
	AdditionalImages []string    `json:"additionalImages" gorm:"type:jsonb;serializer:json"`
	Subcategory      string      `json:"subcategory" gorm:"type:varchar(100)"`
	Rating           float64     `json:"rating" gorm:"type:decimal(3,2);default:0"` // Денормализованное среднее по отзывам
	Reviews          int         `json:"reviews" gorm:"default:0"`                  // Денормализованное количество отзывов
	Badge            string      `json:"badge" gorm:"type:varchar(100)"`
	Description      string      `json:"description" gorm:"type:text"`
	Stock            int         `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	DeliveryCharge   float64     `json:"deliveryCharge" gorm:"type:decimal(10,2);default:0"` // Доставка за единицу товара
	Variations       []Variation `json:"variations" gorm:"type:jsonb;serializer:json"`
	Categories       []Category  `json:"categories,omitempty" gorm:"many2many:product_categories"`
	CreatedAt        time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// PrimaryCategory возвращает основную категорию товара.
// Товар связан с категориями через join-таблицу, первая связь считается основной.
func (p *Product) PrimaryCategory() string {
	if len(p.Categories) == 0 {
		return ""
	}
	return p.Categories[0].ID
}

// CategoryIDs возвращает все категории товара в виде списка slug
func (p *Product) CategoryIDs() []string {
	ids := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}

// Variation представляет вариацию товара (цвет, размер и т.п.)
type Variation struct {
	Name             string             `json:"name"`
	Options          []string           `json:"options"`
	Required         bool               `json:"required"`
	PriceAdjustments map[string]float64 `json:"priceAdjustments,omitempty"` // Надбавка к цене по опции
}

// Category представляет категорию товаров.
// ID - это slug, используется в URL и неизменяем после создания.
type Category struct {
	ID        string     `json:"id" gorm:"type:varchar(100);primaryKey"`
	Name      string     `json:"name" gorm:"type:varchar(255);not null"`
	Icon      string     `json:"icon" gorm:"type:varchar(100)"`
	Image     string     `json:"image" gorm:"type:text"`
	ParentID  *string    `json:"parentId,omitempty" gorm:"type:varchar(100)"` // Один уровень вложенности
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	Children  []Category `json:"subcategories,omitempty" gorm:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// OrderStatus представляет статусы заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"    // Начальный статус любого заказа
	OrderStatusProcessing OrderStatus = "Processing" // В обработке
	OrderStatusOnHold     OrderStatus = "On Hold"    // Приостановлен
	OrderStatusShipped    OrderStatus = "Shipped"    // Отправлен
	OrderStatusCompleted  OrderStatus = "Completed"  // Завершен (терминальный)
	OrderStatusCancelled  OrderStatus = "Cancelled"  // Отменен (терминальный)
)

// IsTerminal сообщает, допускает ли статус дальнейшие переходы
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// validStatusTransitions описывает машину состояний заказа.
// Cancelled достижим из любого нетерминального статуса.
var validStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusOnHold, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusOnHold:     {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// CanTransition проверяет допустимость перехода из текущего статуса
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, allowed := range validStatusTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// PaymentMethod представляет способ оплаты
type PaymentMethod string

const (
	PaymentAdvance        PaymentMethod = "advance" // Предоплата с подтверждением через WhatsApp
	PaymentCashOnDelivery PaymentMethod = "cod"     // Оплата при получении
)

// Order представляет заказ в системе
type Order struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	OrderNumber   string        `json:"orderNumber" gorm:"type:varchar(20);not null;index"` // Формат ORD-<год><номер>
	UserID        uuid.UUID     `json:"userId" gorm:"type:uuid;not null;index"`
	Status        OrderStatus   `json:"status" gorm:"type:varchar(20);not null;default:'Pending'"`
	ItemsCount    int           `json:"itemsCount" gorm:"not null"`
	Subtotal      float64       `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Shipping      float64       `json:"shipping" gorm:"type:decimal(10,2);not null"`
	Total         float64       `json:"total" gorm:"type:decimal(10,2);not null"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"type:varchar(20);not null"`

	// Контакт и адрес доставки снимаются в момент заказа и не зависят
	// от последующих правок профиля пользователя
	ShippingName       string `json:"shippingName" gorm:"type:varchar(255);not null"`
	ShippingEmail      string `json:"shippingEmail" gorm:"type:varchar(255)"`
	ShippingPhone      string `json:"shippingPhone" gorm:"type:varchar(50);not null"`
	ShippingAddress    string `json:"shippingAddress" gorm:"type:text;not null"`
	ShippingCity       string `json:"shippingCity" gorm:"type:varchar(100)"`
	ShippingPostalCode string `json:"shippingPostalCode" gorm:"type:varchar(20)"`
	Notes              string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time   `json:"date" gorm:"autoCreateTime"`
	Items     []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem представляет позицию заказа.
// Название, цена и изображение копируются из товара в момент заказа,
// чтобы исторические заказы не менялись при правке или удалении товара.
type OrderItem struct {
	ID                 uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID            uuid.UUID         `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID          int               `json:"productId" gorm:"not null"`
	Name               string            `json:"name" gorm:"type:varchar(255);not null"`
	Price              float64           `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity           int               `json:"quantity" gorm:"not null;check:quantity > 0"`
	Image              string            `json:"image" gorm:"type:text"`
	DeliveryCharge     float64           `json:"deliveryCharge" gorm:"type:decimal(10,2);not null"`
	SelectedVariations map[string]string `json:"selectedVariations,omitempty" gorm:"type:jsonb;serializer:json"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Role представляет роль пользователя
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User представляет пользователя в системе
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	FirstName    string    `json:"firstName,omitempty" db:"first_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // не возвращаем в JSON
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NotificationAudience определяет получателя уведомления.
// Вместо NULL в user_id используется явная аудитория:
// user - конкретный пользователь, admin - все администраторы.
type NotificationAudience string

const (
	AudienceUser  NotificationAudience = "user"
	AudienceAdmin NotificationAudience = "admin"
)

// Notification представляет уведомление, создаваемое переходами заказа
type Notification struct {
	ID        uuid.UUID            `json:"id" gorm:"type:uuid;primaryKey"`
	Audience  NotificationAudience `json:"audience" gorm:"type:varchar(10);not null;index"`
	UserID    uuid.UUID            `json:"userId,omitempty" gorm:"type:uuid;index"` // Заполнен только при audience=user
	Title     string               `json:"title" gorm:"type:varchar(255);not null"`
	Message   string               `json:"message" gorm:"type:text;not null"`
	Type      string               `json:"type" gorm:"type:varchar(50)"`
	OrderID   uuid.UUID            `json:"orderId,omitempty" gorm:"type:uuid"`
	IsRead    bool                 `json:"isRead" gorm:"not null"`
	CreatedAt time.Time            `json:"created_at" gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Review представляет отзыв на товар
type Review struct {
	ID           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID    int       `json:"product_id" gorm:"not null;index"`
	Rating       int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment      string    `json:"comment" gorm:"type:text"`
	ReviewerName string    `json:"reviewer_name" gorm:"type:varchar(255)"`
	Pictures     []string  `json:"picture_urls" gorm:"type:jsonb;serializer:json"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Review) TableName() string {
	return "reviews"
}

// Address представляет сохраненный адрес пользователя
type Address struct {
	ID         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Label      string    `json:"label" gorm:"type:varchar(50)"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null"`
	Phone      string    `json:"phone" gorm:"type:varchar(50)"`
	Address    string    `json:"address" gorm:"type:text;not null"`
	City       string    `json:"city" gorm:"type:varchar(100)"`
	PostalCode string    `json:"postalCode" gorm:"type:varchar(20)"`
	IsDefault  bool      `json:"isDefault" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Address) TableName() string {
	return "addresses"
}

// WishlistItem представляет товар в списке желаний пользователя
type WishlistItem struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID int       `json:"productId" gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	CreatedAt time.Time `json:"added_at" gorm:"autoCreateTime"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// Contact представляет сообщение из формы обратной связи
type Contact struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject,omitempty" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Testimonial представляет отзыв клиента для главной страницы
type Testimonial struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Location  string    `json:"location" gorm:"type:varchar(255)"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Rating    int       `json:"rating" gorm:"default:5"`
	Avatar    string    `json:"avatar" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}

// OrderEvent представляет событие заказа для Kafka
type OrderEvent struct {
	EventType   string      `json:"event_type"` // ORDER_CREATED, ORDER_STATUS_UPDATED
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      uuid.UUID   `json:"user_id"`
	Status      OrderStatus `json:"status"`
	Total       float64     `json:"total"`
	ItemsCount  int         `json:"items_count"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ReviewEvent представляет событие создания отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED
	ReviewID  int       `json:"review_id"`
	ProductID int       `json:"product_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
