package repository

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"homenest/internal/app/store/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// idSearchPattern распознает поисковые запросы вида "CD-0007", "cd7" или "7",
// чтобы текстовый поиск работал и как поиск по ID товара
var idSearchPattern = regexp.MustCompile(`(?i)^(?:cd-?0*)?([0-9]+)$`)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар и связи с категориями.
// Категории не изменяются, создаются только записи в join-таблице.
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Omit("Categories.*").Create(product)
	return result.Error
}

// GetByID получает товар по ID вместе с категориями
func (r *productRepository) GetByID(ctx context.Context, id int) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).Preload("Categories").First(&product, "products.id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetByIDs получает несколько товаров за один запрос
func (r *productRepository) GetByIDs(ctx context.Context, ids []int) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// List получает товары с фильтрами по категории, подкатегории и поисковой строке.
// При поиске точные и префиксные совпадения по имени идут первыми, затем по новизне;
// без поиска порядок стабильный по возрастанию ID.
func (r *productRepository) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	q := r.db.WithContext(ctx).Model(&entity.Product{}).Preload("Categories")

	if filter.Category != "" {
		q = q.Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id = ?", filter.Category)
	}

	if filter.Subcategory != "" {
		q = q.Where("LOWER(subcategory) = LOWER(?)", filter.Subcategory)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		if id, ok := parseIDSearch(search); ok {
			q = q.Where("products.id = ?", id)
		} else {
			term := strings.ToLower(search)
			pattern := "%" + term + "%"
			// Поиск покрывает и имена связанных категорий
			q = q.Where(
				"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(subcategory) LIKE ? OR "+
					"EXISTS (SELECT 1 FROM product_categories pc2 JOIN categories c ON c.id = pc2.category_id "+
					"WHERE pc2.product_id = products.id AND LOWER(c.name) LIKE ?)",
				pattern, pattern, pattern, pattern,
			)
			q = q.Clauses(clause.OrderBy{
				Expression: clause.Expr{
					SQL:                "(LOWER(name) = ?) DESC, (LOWER(name) LIKE ?) DESC, products.created_at DESC",
					Vars:               []interface{}{term, term + "%"},
					WithoutParentheses: true,
				},
			})
		}
	} else {
		q = q.Order("products.id ASC")
	}

	var products []entity.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

// Update обновляет товар и заменяет его связи с категориями
func (r *productRepository) Update(ctx context.Context, product *entity.Product, categoryIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"name":              product.Name,
			"price":             product.Price,
			"original_price":    product.OriginalPrice,
			"image":             product.Image,
			"additional_images": product.AdditionalImages,
			"subcategory":       product.Subcategory,
			"badge":             product.Badge,
			"description":       product.Description,
			"stock":             product.Stock,
			"delivery_charge":   product.DeliveryCharge,
			"variations":        product.Variations,
		})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		if categoryIDs != nil {
			categories := make([]entity.Category, len(categoryIDs))
			for i, id := range categoryIDs {
				categories[i] = entity.Category{ID: id}
			}
			if err := tx.Model(product).Omit("Categories.*").Association("Categories").Replace(categories); err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete удаляет товар и его связи с категориями
func (r *productRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		return nil
	})
}

// parseIDSearch извлекает ID товара из поискового запроса
func parseIDSearch(search string) (int, bool) {
	matches := idSearchPattern.FindStringSubmatch(search)
	if matches == nil {
		return 0, false
	}

	id, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, false
	}

	return id, true
}
