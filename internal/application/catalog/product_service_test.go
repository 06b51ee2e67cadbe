package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindPage(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) HasBeenOrdered(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// fakeStorage presigns deterministic URLs
type fakeStorage struct {
	err         error
	lastKey     string
	lastType    string
	lastExpires time.Duration
}

func (f *fakeStorage) GenerateUploadURL(_ context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.lastKey, f.lastType, f.lastExpires = key, contentType, expiresIn
	return "https://upload.test/" + key + "?sig=abc", time.Now().Add(expiresIn), nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func newProductService(repo *MockProductRepository, storage ObjectStorageService) (*ProductService, *recordingPublisher) {
	svc := NewProductService(repo, storage, zap.NewNop())
	publisher := &recordingPublisher{}
	svc.SetEventPublisher(publisher)
	return svc, publisher
}

func sampleRequest() ProductRequest {
	sale := decimal.NewFromInt(80)
	return ProductRequest{
		Name:      "Linen Shirt",
		Type:      "Shirt",
		Gender:    "Male",
		Price:     decimal.NewFromInt(100),
		SalePrice: &sale,
		Images:    []ImageRequest{{URL: "https://cdn.test/a.jpg"}, {URL: "https://cdn.test/b.jpg", Alt: "Back"}},
		Colors:    []ColorRequest{{Name: "White", Color: "#ffffff"}},
		Sizes:     []string{"S", "M"},
	}
}

func existingProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{Name: "Old", Type: "shirt", Gender: "male", Price: decimal.NewFromInt(50)})
	require.NoError(t, err)
	require.NoError(t, p.ReplaceFacets([]catalog.ImageInput{{URL: "https://cdn.test/old.jpg"}}, nil, []string{"L"}))
	p.ClearDomainEvents()
	return p
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc, _ := newProductService(repo, nil)

	min, max := decimal.NewFromInt(10), decimal.NewFromInt(90)
	p := existingProduct(t)
	repo.On("List", ctx, catalog.ProductFilter{
		Type: "shirt", Gender: "all", MinPrice: &min, MaxPrice: &max, Sizes: []string{"M"}, Sort: catalog.SortPriceAsc,
	}).Return([]catalog.Product{*p}, nil)

	result, err := svc.List(ctx, ProductListQuery{
		Type: "shirt", Gender: "all", MinPrice: &min, MaxPrice: &max, Sizes: []string{"M"}, Sort: "price-asc",
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Old", result[0].Name)
	assert.Equal(t, "L", result[0].Sizes[0].Value)
}

func TestProductService_List_InvertedRange(t *testing.T) {
	repo := new(MockProductRepository)
	svc, _ := newProductService(repo, nil)
	min, max := decimal.NewFromInt(90), decimal.NewFromInt(10)

	_, err := svc.List(context.Background(), ProductListQuery{MinPrice: &min, MaxPrice: &max})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProductService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc, _ := newProductService(repo, nil)
	p := existingProduct(t)
	missing := uuid.New()
	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	detail, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/old.jpg"}, detail.Images)
	assert.Equal(t, []string{"L"}, detail.Sizes)

	_, err = svc.Get(ctx, missing)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestProductService_AdminList(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc, _ := newProductService(repo, nil)

	repo.On("FindPage", ctx, shared.Filter{
		Page: 2, PageSize: 10, OrderBy: "created_at", OrderDir: "desc", Search: "linen",
		Filters: map[string]interface{}{"type": "shirt"},
	}).Return([]catalog.Product{*existingProduct(t)}, int64(11), nil)

	page, err := svc.AdminList(ctx, AdminProductListQuery{Page: 2, Search: " linen ", Type: "Shirt", Gender: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc, publisher := newProductService(repo, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := svc.Create(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "shirt", resp.Type)
	assert.Equal(t, "male", resp.Gender)
	require.Len(t, resp.Images, 2)
	assert.Equal(t, "Linen Shirt", resp.Images[0].Alt)
	assert.Equal(t, "Back", resp.Images[1].Alt)
	assert.Len(t, resp.Colors, 1)
	assert.Len(t, resp.Sizes, 2)
	assert.Equal(t, []string{catalog.EventTypeProductCreated}, publisher.types())
}

func TestProductService_Create_Invalid(t *testing.T) {
	repo := new(MockProductRepository)
	svc, publisher := newProductService(repo, nil)

	req := sampleRequest()
	req.Price = decimal.Zero
	_, err := svc.Create(context.Background(), req)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	assert.Empty(t, publisher.events)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc, publisher := newProductService(repo, nil)
	p := existingProduct(t)
	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("Update", ctx, p).Return(nil)

	resp, err := svc.Update(ctx, p.ID, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", resp.Name)
	assert.Equal(t, []SizeResponse{{ID: p.Sizes[0].ID, Value: "S"}, {ID: p.Sizes[1].ID, Value: "M"}}, resp.Sizes)
	assert.Equal(t, []string{catalog.EventTypeProductUpdated}, publisher.types())
}

func TestProductService_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc, _ := newProductService(repo, nil)
	id := uuid.New()
	repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Update(ctx, id, sampleRequest())
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("unordered product", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc, publisher := newProductService(repo, nil)
		p := existingProduct(t)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("HasBeenOrdered", ctx, p.ID).Return(false, nil)
		repo.On("Delete", ctx, p.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, p.ID))
		assert.Equal(t, []string{catalog.EventTypeProductDeleted}, publisher.types())
	})

	t.Run("ordered product is kept", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc, publisher := newProductService(repo, nil)
		p := existingProduct(t)
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("HasBeenOrdered", ctx, p.ID).Return(true, nil)

		err := svc.Delete(ctx, p.ID)
		assert.ErrorIs(t, err, catalog.ErrProductOrdered)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Empty(t, publisher.events)
	})

	t.Run("missing product", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc, _ := newProductService(repo, nil)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, id), catalog.ErrProductNotFound)
	})
}

func TestProductService_CreateUploadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns under products prefix", func(t *testing.T) {
		storage := &fakeStorage{}
		svc, _ := newProductService(new(MockProductRepository), storage)
		svc.SetUploadExpiry(5 * time.Minute)

		resp, err := svc.CreateUploadURL(ctx, UploadURLRequest{Filename: "Shirt.JPEG", ContentType: "image/jpeg"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp.StorageKey, "products/"))
		assert.True(t, strings.HasSuffix(resp.StorageKey, ".jpeg"))
		_, err = uuid.Parse(strings.TrimSuffix(strings.TrimPrefix(resp.StorageKey, "products/"), ".jpeg"))
		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.test/"+resp.StorageKey, resp.PublicURL)
		assert.Contains(t, resp.UploadURL, resp.StorageKey)
		assert.Equal(t, 5*time.Minute, storage.lastExpires)
		assert.Equal(t, "image/jpeg", storage.lastType)
	})

	t.Run("extension follows content type", func(t *testing.T) {
		svc, _ := newProductService(new(MockProductRepository), &fakeStorage{})
		resp, err := svc.CreateUploadURL(ctx, UploadURLRequest{Filename: "photo.jpeg", ContentType: "image/png"})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(resp.StorageKey, ".png"))
	})

	t.Run("rejects non-images", func(t *testing.T) {
		svc, _ := newProductService(new(MockProductRepository), &fakeStorage{})
		_, err := svc.CreateUploadURL(ctx, UploadURLRequest{Filename: "x.pdf", ContentType: "application/pdf"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CONTENT_TYPE", domainErr.Code)
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc, _ := newProductService(new(MockProductRepository), nil)
		_, err := svc.CreateUploadURL(ctx, UploadURLRequest{Filename: "a.png", ContentType: "image/png"})
		assert.Error(t, err)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, _ := newProductService(new(MockProductRepository), &fakeStorage{err: errors.New("s3 down")})
		_, err := svc.CreateUploadURL(ctx, UploadURLRequest{Filename: "a.png", ContentType: "image/png"})
		assert.EqualError(t, err, "s3 down")
	})
}
