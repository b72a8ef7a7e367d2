package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/repository"
	"homenest/internal/app/store/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func orderServiceWithMocks() (*OrderService, *mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockUserRepository, *mocks.MockMessagePublisher, *mocks.MockOrderArchiver) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	userRepo := new(mocks.MockUserRepository)
	publisher := new(mocks.MockMessagePublisher)
	archiver := new(mocks.MockOrderArchiver)

	svc := NewOrderService(orderRepo, productRepo, userRepo, publisher, archiver, "94771234567")
	return svc, orderRepo, productRepo, userRepo, publisher, archiver
}

func placeOrderRequest() *entity.CreateOrderRequest {
	return &entity.CreateOrderRequest{
		Items: []entity.OrderItemRequest{
			{ProductID: 7, Quantity: 2},
		},
		PaymentMethod:   entity.PaymentCashOnDelivery,
		ShippingName:    "Asha Perera",
		ShippingPhone:   "0771234567",
		ShippingAddress: "12 Lake Road",
	}
}

func catalogProducts() []entity.Product {
	return []entity.Product{
		{ID: 7, Name: "Ceramic Vase", Price: 100.0, Image: "vase.jpg", Stock: 5, DeliveryCharge: 50.0},
	}
}

// ===================== PlaceOrder Tests =====================

func TestPlaceOrder_Success(t *testing.T) {
	svc, orderRepo, productRepo, _, publisher, archiver := orderServiceWithMocks()
	ctx := context.Background()
	userID := uuid.New()

	productRepo.On("GetByIDs", ctx, []int{7}).Return(catalogProducts(), nil)
	orderRepo.On("CountAll", ctx).Return(int64(41), nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order"), mock.AnythingOfType("[]entity.Notification")).Return(nil)
	publisher.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	archiver.On("ArchiveOrder", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

	result, err := svc.PlaceOrder(ctx, userID, placeOrderRequest())

	assert.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, entity.OrderStatusPending, result.Status)
	// Суммы пересчитаны на сервере: 100*2 + доставка 50*2
	assert.Equal(t, 200.0, result.Subtotal)
	assert.Equal(t, 100.0, result.Shipping)
	assert.Equal(t, 300.0, result.Total)
	assert.Equal(t, 2, result.ItemsCount)
	// Позиция содержит снимок товара
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "Ceramic Vase", result.Items[0].Name)
	assert.Equal(t, 100.0, result.Items[0].Price)
	assert.Equal(t, "vase.jpg", result.Items[0].Image)
	// Наложенный платеж не дает ссылку на оплату
	assert.Empty(t, result.PaymentLink)

	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestPlaceOrder_OrderNumberFormat(t *testing.T) {
	svc, orderRepo, productRepo, _, publisher, archiver := orderServiceWithMocks()
	ctx := context.Background()

	productRepo.On("GetByIDs", ctx, []int{7}).Return(catalogProducts(), nil)
	orderRepo.On("CountAll", ctx).Return(int64(41), nil)
	orderRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	archiver.On("ArchiveOrder", ctx, mock.Anything).Return(nil)

	result, err := svc.PlaceOrder(ctx, uuid.New(), placeOrderRequest())

	assert.NoError(t, err)
	expected := fmt.Sprintf("ORD-%d0042", time.Now().Year())
	assert.Equal(t, expected, result.OrderNumber)
}

func TestPlaceOrder_AdvancePayment_ReturnsWhatsAppLink(t *testing.T) {
	svc, orderRepo, productRepo, _, publisher, archiver := orderServiceWithMocks()
	ctx := context.Background()

	req := placeOrderRequest()
	req.PaymentMethod = entity.PaymentAdvance

	productRepo.On("GetByIDs", ctx, []int{7}).Return(catalogProducts(), nil)
	orderRepo.On("CountAll", ctx).Return(int64(0), nil)
	orderRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	archiver.On("ArchiveOrder", ctx, mock.Anything).Return(nil)

	result, err := svc.PlaceOrder(ctx, uuid.New(), req)

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.PaymentLink, "https://wa.me/94771234567?text="))
	assert.Contains(t, result.PaymentLink, result.OrderNumber)
}

func TestPlaceOrder_VariationAdjustmentAppliedToPrice(t *testing.T) {
	svc, orderRepo, productRepo, _, publisher, archiver := orderServiceWithMocks()
	ctx := context.Background()

	products := []entity.Product{
		{
			ID: 7, Name: "Ceramic Vase", Price: 100.0, Stock: 5,
			Variations: []entity.Variation{
				{Name: "Size", Options: []string{"Small", "Large"}, PriceAdjustments: map[string]float64{"Large": 25.0}},
			},
		},
	}

	req := placeOrderRequest()
	req.Items[0].SelectedVariations = map[string]string{"Size": "Large"}

	productRepo.On("GetByIDs", ctx, []int{7}).Return(products, nil)
	orderRepo.On("CountAll", ctx).Return(int64(0), nil)
	orderRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	archiver.On("ArchiveOrder", ctx, mock.Anything).Return(nil)

	result, err := svc.PlaceOrder(ctx, uuid.New(), req)

	assert.NoError(t, err)
	assert.Equal(t, 125.0, result.Items[0].Price)
	assert.Equal(t, 250.0, result.Subtotal)
}

func TestPlaceOrder_ProductMissing(t *testing.T) {
	svc, orderRepo, productRepo, _, _, _ := orderServiceWithMocks()
	ctx := context.Background()

	productRepo.On("GetByIDs", ctx, []int{7}).Return([]entity.Product{}, nil)

	_, err := svc.PlaceOrder(ctx, uuid.New(), placeOrderRequest())

	assert.ErrorIs(t, err, ErrProductNotFound)
	orderRepo.AssertNotCalled(t, "Create")
}

func TestPlaceOrder_InsufficientStock_PassedThrough(t *testing.T) {
	svc, orderRepo, productRepo, _, publisher, archiver := orderServiceWithMocks()
	ctx := context.Background()

	stockErr := &repository.InsufficientStockError{
		ProductID: 7, ProductName: "Ceramic Vase", Requested: 2, Available: 1,
	}

	productRepo.On("GetByIDs", ctx, []int{7}).Return(catalogProducts(), nil)
	orderRepo.On("CountAll", ctx).Return(int64(0), nil)
	orderRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(stockErr)

	_, err := svc.PlaceOrder(ctx, uuid.New(), placeOrderRequest())

	var got *InsufficientStockError
	assert.ErrorAs(t, err, &got)
	assert.Equal(t, "Ceramic Vase", got.ProductName)
	publisher.AssertNotCalled(t, "PublishMessage")
	archiver.AssertNotCalled(t, "ArchiveOrder")
}

// Сбой Kafka или архива не ломает уже сохраненный заказ
func TestPlaceOrder_SideEffectFailuresIgnored(t *testing.T) {
	svc, orderRepo, productRepo, _, publisher, archiver := orderServiceWithMocks()
	ctx := context.Background()

	productRepo.On("GetByIDs", ctx, []int{7}).Return(catalogProducts(), nil)
	orderRepo.On("CountAll", ctx).Return(int64(0), nil)
	orderRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	archiver.On("ArchiveOrder", ctx, mock.Anything).Return(errors.New("mongo down"))

	result, err := svc.PlaceOrder(ctx, uuid.New(), placeOrderRequest())

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

// Заказ создает уведомления для покупателя и администраторов
func TestPlaceOrder_CreatesNotificationsForBothAudiences(t *testing.T) {
	svc, orderRepo, productRepo, _, publisher, archiver := orderServiceWithMocks()
	ctx := context.Background()
	userID := uuid.New()

	var captured []entity.Notification
	productRepo.On("GetByIDs", ctx, []int{7}).Return(catalogProducts(), nil)
	orderRepo.On("CountAll", ctx).Return(int64(0), nil)
	orderRepo.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).([]entity.Notification)
		}).Return(nil)
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	archiver.On("ArchiveOrder", ctx, mock.Anything).Return(nil)

	_, err := svc.PlaceOrder(ctx, userID, placeOrderRequest())

	assert.NoError(t, err)
	assert.Len(t, captured, 2)
	assert.Equal(t, entity.AudienceUser, captured[0].Audience)
	assert.Equal(t, userID, captured[0].UserID)
	assert.Equal(t, entity.AudienceAdmin, captured[1].Audience)
}

// ===================== GetOrder Tests =====================

func TestGetOrder_OwnerAllowed(t *testing.T) {
	svc, orderRepo, _, _, _, _ := orderServiceWithMocks()
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{ID: orderID, UserID: userID}, nil)

	order, err := svc.GetOrder(ctx, orderID, userID, entity.RoleUser)

	assert.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
}

func TestGetOrder_StrangerDenied(t *testing.T) {
	svc, orderRepo, _, _, _, _ := orderServiceWithMocks()
	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{ID: orderID, UserID: uuid.New()}, nil)

	_, err := svc.GetOrder(ctx, orderID, uuid.New(), entity.RoleUser)

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetOrder_AdminSeesAny(t *testing.T) {
	svc, orderRepo, _, _, _, _ := orderServiceWithMocks()
	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{ID: orderID, UserID: uuid.New()}, nil)

	_, err := svc.GetOrder(ctx, orderID, uuid.New(), entity.RoleAdmin)

	assert.NoError(t, err)
}

// ===================== UpdateOrderStatus Tests =====================

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	svc, orderRepo, _, _, publisher, _ := orderServiceWithMocks()
	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("UpdateStatus", ctx, orderID, entity.OrderStatusShipped, mock.Anything).
		Return(nil, repository.ErrInvalidStatusTransition)

	_, err := svc.UpdateOrderStatus(ctx, orderID, entity.OrderStatusShipped)

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	publisher.AssertNotCalled(t, "PublishMessage")
}

func TestUpdateOrderStatus_PublishesEvent(t *testing.T) {
	svc, orderRepo, _, _, publisher, _ := orderServiceWithMocks()
	ctx := context.Background()
	orderID := uuid.New()
	updated := &entity.Order{ID: orderID, Status: entity.OrderStatusShipped, OrderNumber: "ORD-20260001"}

	orderRepo.On("UpdateStatus", ctx, orderID, entity.OrderStatusShipped, mock.AnythingOfType("*entity.Notification")).
		Return(updated, nil)
	publisher.On("PublishMessage", ctx, orderID.String(), mock.Anything).Return(nil)

	order, err := svc.UpdateOrderStatus(ctx, orderID, entity.OrderStatusShipped)

	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, order.Status)
	publisher.AssertExpectations(t)
}

// ===================== CancelOrder Tests =====================

func TestCancelOrder_OwnerCancels(t *testing.T) {
	svc, orderRepo, _, _, publisher, _ := orderServiceWithMocks()
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).
		Return(&entity.Order{ID: orderID, UserID: userID, OrderNumber: "ORD-20260001", Status: entity.OrderStatusPending}, nil)
	orderRepo.On("UpdateStatus", ctx, orderID, entity.OrderStatusCancelled, mock.AnythingOfType("*entity.Notification")).
		Return(&entity.Order{ID: orderID, UserID: userID, Status: entity.OrderStatusCancelled}, nil)
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	order, err := svc.CancelOrder(ctx, orderID, userID)

	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, order.Status)
}

func TestCancelOrder_StrangerDenied(t *testing.T) {
	svc, orderRepo, _, _, _, _ := orderServiceWithMocks()
	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).
		Return(&entity.Order{ID: orderID, UserID: uuid.New(), Status: entity.OrderStatusPending}, nil)

	_, err := svc.CancelOrder(ctx, orderID, uuid.New())

	assert.ErrorIs(t, err, ErrUnauthorized)
	orderRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestCancelOrder_AlreadyCancelled(t *testing.T) {
	svc, orderRepo, _, _, _, _ := orderServiceWithMocks()
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).
		Return(&entity.Order{ID: orderID, UserID: userID, Status: entity.OrderStatusCancelled}, nil)
	orderRepo.On("UpdateStatus", ctx, orderID, entity.OrderStatusCancelled, mock.Anything).
		Return(nil, repository.ErrInvalidStatusTransition)

	_, err := svc.CancelOrder(ctx, orderID, userID)

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

// ===================== GetAllOrders Tests =====================

func TestGetAllOrders_HydratesCustomers(t *testing.T) {
	svc, orderRepo, _, userRepo, _, _ := orderServiceWithMocks()
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	orders := []entity.Order{
		{ID: uuid.New(), UserID: alice},
		{ID: uuid.New(), UserID: bob},
		{ID: uuid.New(), UserID: alice},
	}
	refs := map[uuid.UUID]entity.UserRef{
		alice: {ID: alice, Name: "Alice", Email: "alice@example.com"},
		bob:   {ID: bob, Name: "Bob", Email: "bob@example.com"},
	}

	orderRepo.On("GetAll", ctx).Return(orders, nil)
	userRepo.On("GetRefsByIDs", ctx, mock.MatchedBy(func(ids []uuid.UUID) bool {
		return len(ids) == 2
	})).Return(refs, nil)

	result, err := svc.GetAllOrders(ctx)

	assert.NoError(t, err)
	assert.Len(t, result, 3)
	assert.Equal(t, "Alice", result[0].CustomerName)
	assert.Equal(t, "bob@example.com", result[1].CustomerEmail)
	assert.Equal(t, "Alice", result[2].CustomerName)
}
