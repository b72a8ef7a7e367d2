package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/infrastructure"
	"homenest/internal/app/store/repository"
	"homenest/internal/app/store/util"
	"homenest/pkg/logger"
	"homenest/pkg/metrics"

	"github.com/google/uuid"
)

// InsufficientStockError пробрасывается из репозитория как есть:
// сообщение безопасно для показа покупателю
type InsufficientStockError = repository.InsufficientStockError

// OrderService обрабатывает бизнес-логику заказов.
// Координирует репозитории, Kafka, архив и WhatsApp ссылку оплаты.
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	kafkaProducer infrastructure.MessagePublisher
	archiver      infrastructure.OrderArchiver
	whatsAppPhone string
}

// NewOrderService создает новый сервис заказов с внедрением зависимостей
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	kafkaProducer infrastructure.MessagePublisher,
	archiver infrastructure.OrderArchiver,
	whatsAppPhone string,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		kafkaProducer: kafkaProducer,
		archiver:      archiver,
		whatsAppPhone: whatsAppPhone,
	}
}

// PlaceOrder оформляет заказ
// 1. Проверяет существование товаров и собирает снимки позиций
// 2. Пересчитывает суммы на сервере, клиентские суммы не принимаются
// 3. Генерирует человекочитаемый номер заказа
// 4. Выполняет транзакцию списания остатков и вставки заказа
// 5. После коммита: событие в Kafka, архив в Mongo, ссылка WhatsApp
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *entity.CreateOrderRequest) (*entity.OrderResponse, error) {
	productIDs := make([]int, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range productIDs {
		if _, ok := byID[id]; !ok {
			return nil, ErrProductNotFound
		}
	}

	orderID := uuid.New()
	items := make([]entity.OrderItem, 0, len(req.Items))
	var subtotal, shipping float64
	var itemsCount int

	for _, itemReq := range req.Items {
		product := byID[itemReq.ProductID]

		// Цена фиксируется из каталога с учетом надбавок выбранных вариаций
		unitPrice := product.Price + variationAdjustment(product, itemReq.SelectedVariations)

		items = append(items, entity.OrderItem{
			ID:                 uuid.New(),
			OrderID:            orderID,
			ProductID:          product.ID,
			Name:               product.Name,
			Price:              unitPrice,
			Quantity:           itemReq.Quantity,
			Image:              product.Image,
			DeliveryCharge:     product.DeliveryCharge,
			SelectedVariations: itemReq.SelectedVariations,
		})

		subtotal += unitPrice * float64(itemReq.Quantity)
		shipping += product.DeliveryCharge * float64(itemReq.Quantity)
		itemsCount += itemReq.Quantity
	}

	orderNumber, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &entity.Order{
		ID:            orderID,
		OrderNumber:   orderNumber,
		UserID:        userID,
		Status:        entity.OrderStatusPending,
		ItemsCount:    itemsCount,
		Subtotal:      subtotal,
		Shipping:      shipping,
		Total:         subtotal + shipping,
		PaymentMethod: req.PaymentMethod,

		ShippingName:       req.ShippingName,
		ShippingEmail:      req.ShippingEmail,
		ShippingPhone:      req.ShippingPhone,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingPostalCode: req.ShippingPostalCode,
		Notes:              req.Notes,

		Items: items,
	}

	notifications := []entity.Notification{
		{
			ID:       uuid.New(),
			Audience: entity.AudienceUser,
			UserID:   userID,
			Title:    "Order Placed",
			Message:  fmt.Sprintf("Your order %s has been placed successfully.", orderNumber),
			Type:     "order",
			OrderID:  orderID,
		},
		{
			ID:       uuid.New(),
			Audience: entity.AudienceAdmin,
			Title:    "New Order",
			Message:  fmt.Sprintf("Order %s placed for Rs. %.2f (%d items).", orderNumber, order.Total, itemsCount),
			Type:     "order",
			OrderID:  orderID,
		},
	}

	if err := s.orderRepo.Create(ctx, order, notifications); err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.As(err, &stockErr):
			metrics.OrdersStockRejections.WithLabelValues(stockErr.ProductName).Inc()
			return nil, stockErr
		default:
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}

	metrics.OrdersCreated.Inc()
	metrics.OrdersAmount.Add(order.Total)
	metrics.NotificationsCreated.WithLabelValues(string(entity.AudienceUser)).Inc()
	metrics.NotificationsCreated.WithLabelValues(string(entity.AudienceAdmin)).Inc()

	s.publishOrderEvent(ctx, "ORDER_CREATED", order)
	s.archiveOrder(ctx, order)

	resp := &entity.OrderResponse{Order: *order}
	if req.PaymentMethod == entity.PaymentAdvance {
		resp.PaymentLink = util.BuildWhatsAppLink(s.whatsAppPhone, order)
	}

	return resp, nil
}

// variationAdjustment возвращает суммарную надбавку к цене по выбранным опциям
func variationAdjustment(product *entity.Product, selected map[string]string) float64 {
	if len(selected) == 0 {
		return 0
	}

	var adjustment float64
	for _, variation := range product.Variations {
		option, ok := selected[variation.Name]
		if !ok {
			continue
		}
		if delta, ok := variation.PriceAdjustments[option]; ok {
			adjustment += delta
		}
	}
	return adjustment
}

// nextOrderNumber генерирует номер вида ORD-20260042.
// Номер производен от числа заказов и не защищен от гонки при
// одновременном оформлении; уникален идентификатор заказа, не номер.
func (s *OrderService) nextOrderNumber(ctx context.Context) (string, error) {
	count, err := s.orderRepo.CountAll(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d%04d", time.Now().Year(), count+1), nil
}

// GetOrder получает заказ по ID с проверкой доступа:
// заказ видит владелец или администратор
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID, role entity.Role) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.UserID != userID && role != entity.RoleAdmin {
		return nil, ErrUnauthorized
	}

	return order, nil
}

// GetUserOrders получает все заказы пользователя, новые первыми
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}
	return orders, nil
}

// GetAllOrders возвращает все заказы с данными покупателей для админ-панели
func (s *OrderService) GetAllOrders(ctx context.Context) ([]entity.AdminOrder, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	userIDs := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]struct{}, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.UserID]; !ok {
			seen[order.UserID] = struct{}{}
			userIDs = append(userIDs, order.UserID)
		}
	}

	refs, err := s.userRepo.GetRefsByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order customers: %w", err)
	}

	result := make([]entity.AdminOrder, len(orders))
	for i, order := range orders {
		result[i] = entity.AdminOrder{Order: order}
		if ref, ok := refs[order.UserID]; ok {
			result[i].CustomerName = ref.Name
			result[i].CustomerEmail = ref.Email
		}
	}

	return result, nil
}

// UpdateOrderStatus переводит заказ в новый статус (админ).
// Недопустимый переход отклоняется, отмена возвращает остатки.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	notification := &entity.Notification{
		ID:       uuid.New(),
		Audience: entity.AudienceUser,
		Title:    "Order Update",
		Message:  statusMessage(status),
		Type:     "order",
	}

	order, err := s.orderRepo.UpdateStatus(ctx, orderID, status, notification)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, repository.ErrInvalidStatusTransition):
			return nil, ErrInvalidStatusTransition
		default:
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
	}

	metrics.OrderStatusTransitions.WithLabelValues(string(status)).Inc()
	metrics.NotificationsCreated.WithLabelValues(string(entity.AudienceUser)).Inc()

	s.publishOrderEvent(ctx, "ORDER_STATUS_UPDATED", order)

	return order, nil
}

// CancelOrder отменяет заказ от имени владельца.
// Допустимость отмены решает машина статусов: из терминального
// состояния (включая уже отмененный заказ) перехода нет.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*entity.Order, error) {
	existing, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if existing.UserID != userID {
		return nil, ErrUnauthorized
	}

	notification := &entity.Notification{
		ID:       uuid.New(),
		Audience: entity.AudienceAdmin,
		Title:    "Order Cancelled",
		Message:  fmt.Sprintf("Order %s was cancelled by the customer.", existing.OrderNumber),
		Type:     "order",
	}

	order, err := s.orderRepo.UpdateStatus(ctx, orderID, entity.OrderStatusCancelled, notification)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, repository.ErrInvalidStatusTransition):
			return nil, ErrInvalidStatusTransition
		default:
			return nil, fmt.Errorf("failed to cancel order: %w", err)
		}
	}

	metrics.OrderStatusTransitions.WithLabelValues(string(entity.OrderStatusCancelled)).Inc()
	metrics.NotificationsCreated.WithLabelValues(string(entity.AudienceAdmin)).Inc()

	s.publishOrderEvent(ctx, "ORDER_STATUS_UPDATED", order)

	return order, nil
}

// DeleteOrder жестко удаляет заказ (админ), остатки не возвращаются
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// statusMessage возвращает текст уведомления покупателю о смене статуса
func statusMessage(status entity.OrderStatus) string {
	switch status {
	case entity.OrderStatusProcessing:
		return "Your order is now being processed."
	case entity.OrderStatusOnHold:
		return "Your order has been put on hold."
	case entity.OrderStatusShipped:
		return "Your order has been shipped."
	case entity.OrderStatusCompleted:
		return "Your order has been delivered. Thank you for shopping with us!"
	case entity.OrderStatusCancelled:
		return "Your order has been cancelled."
	default:
		return fmt.Sprintf("Your order status changed to %s.", status)
	}
}

// publishOrderEvent отправляет событие заказа в Kafka.
// Ошибки логируются и не влияют на результат: заказ уже сохранен.
func (s *OrderService) publishOrderEvent(ctx context.Context, eventType string, order *entity.Order) {
	if s.kafkaProducer == nil {
		return
	}

	event := entity.OrderEvent{
		EventType:   eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		Total:       order.Total,
		ItemsCount:  order.ItemsCount,
		Timestamp:   time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to marshal order event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, order.ID.String(), data); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID.String()).Str("event_type", eventType).
			Msg("failed to publish order event")
	}
}

// archiveOrder пишет снимок заказа в архив после коммита
func (s *OrderService) archiveOrder(ctx context.Context, order *entity.Order) {
	if s.archiver == nil {
		return
	}

	if err := s.archiver.ArchiveOrder(ctx, order); err != nil {
		logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to archive order")
	}
}
