package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ObjectStorageService issues presigned uploads for product images.
// Implemented by the infrastructure storage package (S3 or a stub).
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// PublicURL returns the URL the object is served from once uploaded
	PublicURL(storageKey string) string
}

// DefaultUploadURLExpiry is how long a presigned image upload stays valid
const DefaultUploadURLExpiry = 15 * time.Minute

// imageExtensions maps allowed image content types to the stored file extension
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// ProductService serves the public catalog and the admin product back-office
type ProductService struct {
	productRepo    catalog.ProductRepository
	storage        ObjectStorageService
	eventPublisher shared.EventPublisher
	uploadExpiry   time.Duration
	logger         *zap.Logger
}

// NewProductService creates a new ProductService. storage may be nil, in
// which case upload URLs are unavailable.
func NewProductService(productRepo catalog.ProductRepository, storage ObjectStorageService, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		storage:      storage,
		uploadExpiry: DefaultUploadURLExpiry,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for product events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetUploadExpiry overrides how long presigned uploads stay valid
func (s *ProductService) SetUploadExpiry(d time.Duration) {
	if d > 0 {
		s.uploadExpiry = d
	}
}

// List returns the storefront listing
func (s *ProductService) List(ctx context.Context, query ProductListQuery) ([]ProductResponse, error) {
	if query.MinPrice != nil && query.MaxPrice != nil && query.MinPrice.GreaterThan(*query.MaxPrice) {
		return nil, shared.NewDomainError("INVALID_INPUT", "min_price cannot exceed max_price")
	}

	products, err := s.productRepo.List(ctx, catalog.ProductFilter{
		Type:     query.Type,
		Gender:   query.Gender,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		Sizes:    query.Sizes,
		Sort:     catalog.ParseProductSort(query.Sort),
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Get returns the storefront product detail
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductDetailResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := ToProductDetailResponse(product)
	return &detail, nil
}

// AdminList returns one page of products for the back-office, newest first
func (s *ProductService) AdminList(ctx context.Context, query AdminProductListQuery) (*shared.Paginated[ProductResponse], error) {
	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: limit,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   strings.TrimSpace(query.Search),
		Filters:  map[string]interface{}{},
	}
	if v := catalog.NormalizeFacet(query.Type); v != "" && v != catalog.FacetAll {
		filter.Filters["type"] = v
	}
	if v := catalog.NormalizeFacet(query.Gender); v != "" && v != catalog.FacetAll {
		filter.Filters["gender"] = v
	}

	products, total, err := s.productRepo.FindPage(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToProductResponses(products), total, page, limit)
	return &result, nil
}

// AdminGet returns a product with its children for the back-office
func (s *ProductService) AdminGet(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create inserts a product with its images, colors and sizes
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.details())
	if err != nil {
		return nil, err
	}
	images, colors := req.facets()
	if err := product.ReplaceFacets(images, colors, req.Sizes); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	s.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update replaces the product's scalars and all of its children
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.details()); err != nil {
		return nil, err
	}
	images, colors := req.facets()
	if err := product.ReplaceFacets(images, colors, req.Sizes); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	s.publishEvents(ctx, product)

	s.logger.Info("Product updated", zap.String("product_id", product.ID.String()))
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product that no order references
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return err
	}

	ordered, err := s.productRepo.HasBeenOrdered(ctx, id)
	if err != nil {
		return err
	}
	if ordered {
		return catalog.ErrProductOrdered
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			return catalog.ErrProductNotFound
		case errors.Is(err, shared.ErrConflict):
			return catalog.ErrProductOrdered
		}
		return err
	}
	product.MarkDeleted()
	s.publishEvents(ctx, product)

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// CreateUploadURL presigns an image upload under products/<uuid><ext>
func (s *ProductService) CreateUploadURL(ctx context.Context, req UploadURLRequest) (*UploadURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Image upload is not configured")
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG, WebP, GIF and AVIF images can be uploaded")
	}
	if contentType == "image/jpeg" && strings.EqualFold(filepath.Ext(req.Filename), ".jpeg") {
		ext = ".jpeg"
	}

	key := "products/" + uuid.New().String() + ext
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.uploadExpiry)
	if err != nil {
		s.logger.Error("Failed to presign image upload", zap.String("storage_key", key), zap.Error(err))
		return nil, err
	}

	return &UploadURLResponse{
		UploadURL:  uploadURL,
		PublicURL:  s.storage.PublicURL(key),
		StorageKey: key,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *ProductService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, product.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish product events",
				zap.String("product_id", product.ID.String()),
				zap.Error(err))
		}
	}
	product.ClearDomainEvents()
}
