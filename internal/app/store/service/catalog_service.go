package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/repository"
	"homenest/internal/app/store/util"
	"homenest/pkg/logger"
	"homenest/pkg/metrics"
)

const categoryTreeCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога:
// товары, категории и кэшируемое дерево категорий
type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	redisClient  *util.RedisClient
}

// NewCatalogService создает новый сервис каталога.
// redisClient может быть nil, тогда дерево категорий не кэшируется.
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	redisClient *util.RedisClient,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		redisClient:  redisClient,
	}
}

// === Товары ===

// GetProducts возвращает товары по фильтру (категория, подкатегория, поиск)
func (s *CatalogService) GetProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.ProductResponse, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	result := make([]entity.ProductResponse, len(products))
	for i, p := range products {
		result[i] = entity.BuildProductResponse(p)
	}
	return result, nil
}

// GetProduct возвращает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, id int) (*entity.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	resp := entity.BuildProductResponse(*product)
	return &resp, nil
}

// CreateProduct создает товар (админ).
// Все категории из запроса должны существовать.
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.ProductResponse, error) {
	categories, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:             req.Name,
		Price:            req.Price,
		OriginalPrice:    req.OriginalPrice,
		Image:            req.Image,
		AdditionalImages: req.AdditionalImages,
		Subcategory:      req.Subcategory,
		Badge:            req.Badge,
		Description:      req.Description,
		Stock:            req.Stock,
		DeliveryCharge:   req.DeliveryCharge,
		Variations:       req.Variations,
		Categories:       categories,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	resp := entity.BuildProductResponse(*product)
	return &resp, nil
}

// UpdateProduct частично обновляет товар (админ).
// Пустые поля запроса не затирают существующие значения.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int, req *entity.UpdateProductRequest) (*entity.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = req.OriginalPrice
	}
	if req.Image != "" {
		product.Image = req.Image
	}
	if req.AdditionalImages != nil {
		product.AdditionalImages = req.AdditionalImages
	}
	if req.Subcategory != "" {
		product.Subcategory = req.Subcategory
	}
	if req.Badge != "" {
		product.Badge = req.Badge
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.DeliveryCharge != nil {
		product.DeliveryCharge = *req.DeliveryCharge
	}
	if req.Variations != nil {
		product.Variations = req.Variations
	}

	var categoryIDs []string
	if req.CategoryIDs != nil {
		if _, err := s.resolveCategories(ctx, req.CategoryIDs); err != nil {
			return nil, err
		}
		categoryIDs = req.CategoryIDs
	}

	if err := s.productRepo.Update(ctx, product, categoryIDs); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}

	resp := entity.BuildProductResponse(*updated)
	return &resp, nil
}

// DeleteProduct удаляет товар (админ).
// Снимки в существующих заказах не затрагиваются.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// resolveCategories проверяет, что все slug существуют
func (s *CatalogService) resolveCategories(ctx context.Context, ids []string) ([]entity.Category, error) {
	categories := make([]entity.Category, 0, len(ids))
	for _, id := range ids {
		category, err := s.categoryRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
			}
			return nil, fmt.Errorf("failed to resolve category %s: %w", id, err)
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

// === Категории ===

// GetCategoryTree возвращает дерево категорий (корни с подкатегориями).
// Сначала проверяется кэш; промах собирает дерево из БД и кладет в кэш.
// Недоступный Redis не ломает запрос, идем в БД напрямую.
func (s *CatalogService) GetCategoryTree(ctx context.Context) ([]entity.Category, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.GetCategoryTree(ctx)
		if err != nil {
			metrics.RecordRedisError("store", "get")
			logger.Warn().Err(err).Msg("category tree cache read failed")
		} else if cached != nil {
			metrics.RecordCacheHit("store", "categories")
			return cached, nil
		} else {
			metrics.RecordCacheMiss("store", "categories")
		}
	}

	flat, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	tree := buildCategoryTree(flat)

	if s.redisClient != nil {
		if err := s.redisClient.SetCategoryTree(ctx, tree, categoryTreeCacheTTL); err != nil {
			metrics.RecordRedisError("store", "set")
			logger.Warn().Err(err).Msg("category tree cache write failed")
		}
	}

	return tree, nil
}

// buildCategoryTree собирает один уровень вложенности из плоского списка
func buildCategoryTree(flat []entity.Category) []entity.Category {
	roots := make([]entity.Category, 0)
	childrenOf := make(map[string][]entity.Category)

	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			childrenOf[*c.ParentID] = append(childrenOf[*c.ParentID], c)
		}
	}

	for i := range roots {
		roots[i].Children = childrenOf[roots[i].ID]
	}

	return roots
}

// CreateCategory создает категорию (админ)
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	if req.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, fmt.Errorf("%w: parent %s", ErrCategoryNotFound, *req.ParentID)
			}
			return nil, fmt.Errorf("failed to resolve parent category: %w", err)
		}
		// Разрешен один уровень вложенности
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: %s is already a subcategory", ErrCategoryNotFound, *req.ParentID)
		}
	}

	category := &entity.Category{
		ID:        req.ID,
		Name:      req.Name,
		Icon:      req.Icon,
		Image:     req.Image,
		ParentID:  req.ParentID,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategoryCache(ctx)
	return category, nil
}

// UpdateCategory обновляет имя, иконку или изображение категории.
// Slug и родитель после создания не меняются.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Icon != "" {
		category.Icon = req.Icon
	}
	if req.Image != "" {
		category.Image = req.Image
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategoryCache(ctx)
	return category, nil
}

// DeleteCategory удаляет категорию (админ).
// Категория с товарами или подкатегориями не удаляется.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryHasProducts):
			return ErrCategoryHasProducts
		case errors.Is(err, repository.ErrCategoryHasChildren):
			return ErrCategoryHasChildren
		default:
			return fmt.Errorf("failed to delete category: %w", err)
		}
	}

	s.invalidateCategoryCache(ctx)
	return nil
}

// invalidateCategoryCache сбрасывает кэш дерева после любой записи
func (s *CatalogService) invalidateCategoryCache(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.InvalidateCategoryTree(ctx); err != nil {
		metrics.RecordRedisError("store", "del")
		logger.Warn().Err(err).Msg("category tree cache invalidation failed")
	}
}
