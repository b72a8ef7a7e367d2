package entity

import "github.com/google/uuid"

// === Auth ===

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// === Catalog ===

type ProductFilter struct {
	Category    string // slug категории
	Subcategory string
	Search      string
}

type CreateProductRequest struct {
	Name             string      `json:"name" validate:"required"`
	Price            float64     `json:"price" validate:"required,gt=0"`
	OriginalPrice    *float64    `json:"originalPrice,omitempty" validate:"omitempty,gt=0"`
	Image            string      `json:"image"`
	AdditionalImages []string    `json:"additionalImages"`
	CategoryIDs      []string    `json:"categoryIds" validate:"required,min=1"`
	Subcategory      string      `json:"subcategory"`
	Badge            string      `json:"badge"`
	Description      string      `json:"description"`
	Stock            int         `json:"stock" validate:"gte=0"`
	DeliveryCharge   float64     `json:"deliveryCharge" validate:"gte=0"`
	Variations       []Variation `json:"variations"`
}

type UpdateProductRequest struct {
	Name             string      `json:"name,omitempty"`
	Price            float64     `json:"price,omitempty" validate:"omitempty,gt=0"`
	OriginalPrice    *float64    `json:"originalPrice,omitempty"`
	Image            string      `json:"image,omitempty"`
	AdditionalImages []string    `json:"additionalImages,omitempty"`
	CategoryIDs      []string    `json:"categoryIds,omitempty"`
	Subcategory      string      `json:"subcategory,omitempty"`
	Badge            string      `json:"badge,omitempty"`
	Description      string      `json:"description,omitempty"`
	Stock            *int        `json:"stock,omitempty" validate:"omitempty,gte=0"`
	DeliveryCharge   *float64    `json:"deliveryCharge,omitempty" validate:"omitempty,gte=0"`
	Variations       []Variation `json:"variations,omitempty"`
}

// ProductResponse дополняет товар legacy-полями category и categoryIds,
// которые клиент ожидает в плоском виде
type ProductResponse struct {
	Product
	Category    string   `json:"category"`
	CategoryIDs []string `json:"categoryIds"`
}

func BuildProductResponse(p Product) ProductResponse {
	return ProductResponse{
		Product:     p,
		Category:    p.PrimaryCategory(),
		CategoryIDs: p.CategoryIDs(),
	}
}

type CreateCategoryRequest struct {
	ID       string  `json:"id" validate:"required,min=2"` // slug, неизменяем
	Name     string  `json:"name" validate:"required"`
	Icon     string  `json:"icon"`
	Image    string  `json:"image"`
	ParentID *string `json:"parentId,omitempty"`
}

type UpdateCategoryRequest struct {
	Name  string `json:"name,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Image string `json:"image,omitempty"`
}

// === Orders ===

type OrderItemRequest struct {
	ProductID          int               `json:"productId" validate:"required,gt=0"`
	Quantity           int               `json:"quantity" validate:"required,gt=0"`
	SelectedVariations map[string]string `json:"selectedVariations,omitempty"`
}

type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal      float64            `json:"subtotal" validate:"gte=0"`
	Shipping      float64            `json:"shipping" validate:"gte=0"`
	Total         float64            `json:"total" validate:"gte=0"`
	PaymentMethod PaymentMethod      `json:"paymentMethod" validate:"required,oneof=advance cod"`

	ShippingName       string `json:"shippingName" validate:"required"`
	ShippingEmail      string `json:"shippingEmail" validate:"omitempty,email"`
	ShippingPhone      string `json:"shippingPhone" validate:"required"`
	ShippingAddress    string `json:"shippingAddress" validate:"required"`
	ShippingCity       string `json:"shippingCity"`
	ShippingPostalCode string `json:"shippingPostalCode"`
	Notes              string `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=Pending Processing 'On Hold' Shipped Completed Cancelled"`
}

// OrderResponse содержит заказ и, для предоплаты, ссылку на WhatsApp
// с готовым текстом подтверждения
type OrderResponse struct {
	Order
	PaymentLink string `json:"paymentLink,omitempty"`
}

// AdminOrder дополняет заказ данными владельца для админ-списка
type AdminOrder struct {
	Order
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
}

// === Reviews ===

type CreateReviewRequest struct {
	ProductID    int      `json:"product_id" validate:"required,gt=0"`
	Rating       int      `json:"rating" validate:"required,min=1,max=5"`
	Comment      string   `json:"comment"`
	ReviewerName string   `json:"reviewer_name" validate:"required"`
	Pictures     []string `json:"picture_urls"`
}

// === Misc ===

type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

type CreateAddressRequest struct {
	Label      string `json:"label"`
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	IsDefault  bool   `json:"isDefault"`
}

type WishlistRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
}

type CreateTestimonialRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
	Text     string `json:"text" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Avatar   string `json:"avatar"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UserRef компактная ссылка на пользователя для админ-выборок
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
