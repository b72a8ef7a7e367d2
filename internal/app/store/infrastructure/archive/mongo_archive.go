package archive

import (
	"context"
	"fmt"
	"time"

	"homenest/internal/app/store/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders_archive"

// MongoArchive хранит денормализованные снимки заказов.
// Архив пишется после коммита основной транзакции и служит
// для аналитики и истории: Postgres остается источником истины.
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoArchive(ctx context.Context, uri, database string) (*MongoArchive, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	collection := client.Database(database).Collection(ordersCollection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "order_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	indexCtx, cancelIdx := context.WithTimeout(ctx, 10*time.Second)
	defer cancelIdx()
	if _, err := collection.Indexes().CreateOne(indexCtx, indexModel); err != nil {
		return nil, fmt.Errorf("failed to create order_number index: %w", err)
	}

	return &MongoArchive{client: client, collection: collection}, nil
}

type archivedItem struct {
	ProductID  int     `bson:"product_id"`
	Name       string  `bson:"name"`
	Price      float64 `bson:"price"`
	Quantity   int     `bson:"quantity"`
	Variations any     `bson:"variations,omitempty"`
}

type archivedOrder struct {
	OrderID       string         `bson:"order_id"`
	OrderNumber   string         `bson:"order_number"`
	UserID        string         `bson:"user_id"`
	Status        string         `bson:"status"`
	PaymentMethod string         `bson:"payment_method"`
	TotalAmount   float64        `bson:"total_amount"`
	Items         []archivedItem `bson:"items"`
	CreatedAt     time.Time      `bson:"created_at"`
	ArchivedAt    time.Time      `bson:"archived_at"`
}

// ArchiveOrder сохраняет снимок заказа
func (a *MongoArchive) ArchiveOrder(ctx context.Context, order *entity.Order) error {
	doc := archivedOrder{
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID.String(),
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod),
		TotalAmount:   order.Total,
		Items:         make([]archivedItem, 0, len(order.Items)),
		CreatedAt:     order.CreatedAt,
		ArchivedAt:    time.Now(),
	}

	for _, item := range order.Items {
		doc.Items = append(doc.Items, archivedItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			Variations: item.SelectedVariations,
		})
	}

	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to archive order %s: %w", order.OrderNumber, err)
	}

	return nil
}

func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
