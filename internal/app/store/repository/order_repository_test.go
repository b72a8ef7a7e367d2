package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"homenest/internal/app/store/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OrderRepositoryTestSuite тестовый suite для репозитория заказов
type OrderRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  OrderRepository
	sqlDB *sql.DB
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryTestSuite))
}

func (s *OrderRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	s.repo = NewOrderRepository(s.db)
}

func (s *OrderRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func (s *OrderRepositoryTestSuite) productRow(id int, name string, stock int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "price", "stock", "delivery_charge"}).
		AddRow(id, name, 100.0, stock, 50.0)
}

func (s *OrderRepositoryTestSuite) buildOrder(productID, quantity int) *entity.Order {
	orderID := uuid.New()
	return &entity.Order{
		ID:            orderID,
		OrderNumber:   "ORD-20260001",
		UserID:        uuid.New(),
		Status:        entity.OrderStatusPending,
		ItemsCount:    quantity,
		Subtotal:      100.0 * float64(quantity),
		Shipping:      50.0 * float64(quantity),
		Total:         150.0 * float64(quantity),
		PaymentMethod: entity.PaymentCashOnDelivery,
		ShippingName:  "Asha Perera",
		ShippingPhone: "0771234567",
		ShippingAddress: "12 Lake Road",
		Items: []entity.OrderItem{
			{
				ID:             uuid.New(),
				OrderID:        orderID,
				ProductID:      productID,
				Name:           "Ceramic Vase",
				Price:          100.0,
				Quantity:       quantity,
				DeliveryCharge: 50.0,
			},
		},
	}
}

// ===================== Create Tests =====================

func (s *OrderRepositoryTestSuite) TestCreate_Success() {
	order := s.buildOrder(7, 2)
	notifications := []entity.Notification{
		{ID: uuid.New(), Audience: entity.AudienceUser, UserID: order.UserID, Title: "Order Placed", Message: "ok", Type: "order", OrderID: order.ID},
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnRows(s.productRow(7, "Ceramic Vase", 5))
	s.mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1 WHERE id = \$2`).
		WithArgs(2, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`INSERT INTO "orders"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`INSERT INTO "order_items"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`INSERT INTO "notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.Create(context.Background(), order, notifications)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

// Нехватка остатка откатывает транзакцию целиком: ни списаний, ни заказа
func (s *OrderRepositoryTestSuite) TestCreate_InsufficientStock_RollsBack() {
	order := s.buildOrder(7, 10)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnRows(s.productRow(7, "Ceramic Vase", 3))
	s.mock.ExpectRollback()

	err := s.repo.Create(context.Background(), order, nil)

	s.Error(err)
	var stockErr *InsufficientStockError
	s.ErrorAs(err, &stockErr)
	s.Equal(7, stockErr.ProductID)
	s.Equal(10, stockErr.Requested)
	s.Equal(3, stockErr.Available)
	s.Contains(stockErr.Error(), "Ceramic Vase")
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestCreate_ProductMissing_RollsBack() {
	order := s.buildOrder(99, 1)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnError(gorm.ErrRecordNotFound)
	s.mock.ExpectRollback()

	err := s.repo.Create(context.Background(), order, nil)

	s.ErrorIs(err, ErrProductNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// Ошибка на второй позиции отменяет списание первой
func (s *OrderRepositoryTestSuite) TestCreate_SecondItemFails_FirstDecrementRolledBack() {
	orderID := uuid.New()
	order := s.buildOrder(7, 1)
	order.Items = append(order.Items, entity.OrderItem{
		ID:             uuid.New(),
		OrderID:        orderID,
		ProductID:      8,
		Name:           "Linen Cushion",
		Price:          40.0,
		Quantity:       4,
		DeliveryCharge: 50.0,
	})

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnRows(s.productRow(7, "Ceramic Vase", 5))
	s.mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1 WHERE id = \$2`).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnRows(s.productRow(8, "Linen Cushion", 2))
	s.mock.ExpectRollback()

	err := s.repo.Create(context.Background(), order, nil)

	var stockErr *InsufficientStockError
	s.ErrorAs(err, &stockErr)
	s.Equal("Linen Cushion", stockErr.ProductName)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== UpdateStatus Tests =====================

func (s *OrderRepositoryTestSuite) orderRow(id uuid.UUID, status entity.OrderStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "order_number", "user_id", "status", "items_count", "subtotal", "shipping", "total", "payment_method", "shipping_name", "shipping_phone", "shipping_address", "created_at"}).
		AddRow(id, "ORD-20260001", uuid.New(), string(status), 2, 200.0, 100.0, 300.0, "cod", "Asha Perera", "0771234567", "12 Lake Road", time.Now())
}

func (s *OrderRepositoryTestSuite) TestUpdateStatus_ValidTransition() {
	orderID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnRows(s.orderRow(orderID, entity.OrderStatusPending))
	s.mock.ExpectExec(`UPDATE "orders" SET "status"=\$1 WHERE id = \$2`).
		WithArgs("Processing", orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	order, err := s.repo.UpdateStatus(context.Background(), orderID, entity.OrderStatusProcessing, nil)

	s.NoError(err)
	s.Equal(entity.OrderStatusProcessing, order.Status)
	s.NoError(s.mock.ExpectationsWereMet())
}

// Отмена возвращает остатки каждой позиции на склад
func (s *OrderRepositoryTestSuite) TestUpdateStatus_CancelRestoresStock() {
	orderID := uuid.New()

	itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "price", "quantity", "delivery_charge"}).
		AddRow(uuid.New(), orderID, 7, "Ceramic Vase", 100.0, 2, 50.0).
		AddRow(uuid.New(), orderID, 8, "Linen Cushion", 40.0, 1, 50.0)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnRows(s.orderRow(orderID, entity.OrderStatusProcessing))
	s.mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE order_id = \$1`).
		WillReturnRows(itemRows)
	s.mock.ExpectExec(`UPDATE "products" SET "stock"=stock \+ \$1 WHERE id = \$2`).
		WithArgs(2, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`UPDATE "products" SET "stock"=stock \+ \$1 WHERE id = \$2`).
		WithArgs(1, 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`UPDATE "orders" SET "status"=\$1 WHERE id = \$2`).
		WithArgs("Cancelled", orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	order, err := s.repo.UpdateStatus(context.Background(), orderID, entity.OrderStatusCancelled, nil)

	s.NoError(err)
	s.Equal(entity.OrderStatusCancelled, order.Status)
	s.NoError(s.mock.ExpectationsWereMet())
}

// Повторная отмена отклоняется без повторного возврата остатков
func (s *OrderRepositoryTestSuite) TestUpdateStatus_DoubleCancel_Rejected() {
	orderID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnRows(s.orderRow(orderID, entity.OrderStatusCancelled))
	s.mock.ExpectRollback()

	order, err := s.repo.UpdateStatus(context.Background(), orderID, entity.OrderStatusCancelled, nil)

	s.ErrorIs(err, ErrInvalidStatusTransition)
	s.Nil(order)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestUpdateStatus_CompletedIsTerminal() {
	orderID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnRows(s.orderRow(orderID, entity.OrderStatusCompleted))
	s.mock.ExpectRollback()

	_, err := s.repo.UpdateStatus(context.Background(), orderID, entity.OrderStatusProcessing, nil)

	s.ErrorIs(err, ErrInvalidStatusTransition)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *OrderRepositoryTestSuite) TestUpdateStatus_NotFound() {
	orderID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1(.|\n)*FOR UPDATE`).
		WillReturnError(gorm.ErrRecordNotFound)
	s.mock.ExpectRollback()

	_, err := s.repo.UpdateStatus(context.Background(), orderID, entity.OrderStatusProcessing, nil)

	s.ErrorIs(err, ErrOrderNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Delete Tests =====================

func (s *OrderRepositoryTestSuite) TestDelete_NotFound() {
	orderID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM "orders" WHERE id = \$1`).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.Delete(context.Background(), orderID)

	s.ErrorIs(err, ErrOrderNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== CountAll Tests =====================

func (s *OrderRepositoryTestSuite) TestCountAll() {
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

	count, err := s.repo.CountAll(context.Background())

	s.NoError(err)
	s.Equal(int64(41), count)
	s.NoError(s.mock.ExpectationsWereMet())
}
