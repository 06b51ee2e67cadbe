package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductListQuery holds the public catalog filters
type ProductListQuery struct {
	Type     string           `form:"type"`
	Gender   string           `form:"gender"`
	MinPrice *decimal.Decimal `form:"-"`
	MaxPrice *decimal.Decimal `form:"-"`
	Sizes    []string         `form:"size"`
	Sort     string           `form:"sort"`
}

// AdminProductListQuery holds the admin listing query
type AdminProductListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Type   string `form:"type"`
	Gender string `form:"gender"`
}

// ImageRequest is an image in a create/update request
type ImageRequest struct {
	URL string `json:"url" binding:"required,max=1000"`
	Alt string `json:"alt" binding:"max=200"`
}

// ColorRequest is a color in a create/update request
type ColorRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"required,max=50"`
}

// ProductRequest is the body of admin product create and update
type ProductRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description" binding:"max=5000"`
	Material    string           `json:"material" binding:"max=100"`
	Type        string           `json:"type" binding:"required,max=50"`
	Gender      string           `json:"gender" binding:"required,max=20"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Images      []ImageRequest   `json:"images" binding:"omitempty,dive"`
	Colors      []ColorRequest   `json:"colors" binding:"omitempty,dive"`
	Sizes       []string         `json:"sizes" binding:"omitempty,dive,max=20"`
}

func (r ProductRequest) details() catalog.ProductDetails {
	return catalog.ProductDetails{
		Name:        r.Name,
		Description: r.Description,
		Material:    r.Material,
		Type:        r.Type,
		Gender:      r.Gender,
		Price:       r.Price,
		SalePrice:   r.SalePrice,
	}
}

func (r ProductRequest) facets() ([]catalog.ImageInput, []catalog.ColorInput) {
	images := make([]catalog.ImageInput, len(r.Images))
	for i, img := range r.Images {
		images[i] = catalog.ImageInput{URL: img.URL, Alt: img.Alt}
	}
	colors := make([]catalog.ColorInput, len(r.Colors))
	for i, c := range r.Colors {
		colors[i] = catalog.ColorInput{Name: c.Name, Color: c.Color}
	}
	return images, colors
}

// ImageResponse is a product image
type ImageResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
	Alt string    `json:"alt"`
}

// ColorResponse is a product color
type ColorResponse struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SizeResponse is a product size
type SizeResponse struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
}

// ProductResponse is a product with all of its children, used by listings and admin views
type ProductResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Material    string           `json:"material"`
	Type        string           `json:"type"`
	Gender      string           `json:"gender"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Images      []ImageResponse  `json:"images"`
	Colors      []ColorResponse  `json:"colors"`
	Sizes       []SizeResponse   `json:"sizes"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := make([]ImageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = ImageResponse{ID: img.ID, URL: img.URL, Alt: img.Alt}
	}
	colors := make([]ColorResponse, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = ColorResponse{Name: c.Name, Color: c.Color}
	}
	sizes := make([]SizeResponse, len(p.Sizes))
	for i, s := range p.Sizes {
		sizes[i] = SizeResponse{ID: s.ID, Value: s.Value}
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Material:    p.Material,
		Type:        p.Type,
		Gender:      p.Gender,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		Images:      images,
		Colors:      colors,
		Sizes:       sizes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	result := make([]ProductResponse, len(products))
	for i := range products {
		result[i] = ToProductResponse(&products[i])
	}
	return result
}

// ProductDetailResponse is the storefront product detail. Images and sizes are flattened to values.
type ProductDetailResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Material    string           `json:"material"`
	Images      []string         `json:"images"`
	Colors      []ColorResponse  `json:"colors"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Sizes       []string         `json:"sizes"`
	Type        string           `json:"type"`
	Gender      string           `json:"gender"`
}

// ToProductDetailResponse converts a domain product to the storefront detail shape
func ToProductDetailResponse(p *catalog.Product) ProductDetailResponse {
	colors := make([]ColorResponse, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = ColorResponse{Name: c.Name, Color: c.Color}
	}
	return ProductDetailResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Material:    p.Material,
		Images:      p.ImageURLs(),
		Colors:      colors,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		Sizes:       p.SizeValues(),
		Type:        p.Type,
		Gender:      p.Gender,
	}
}

// UploadURLRequest asks for a presigned product image upload
type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

// UploadURLResponse carries the presigned PUT URL and the URL the image will be served from
type UploadURLResponse struct {
	UploadURL  string    `json:"upload_url"`
	PublicURL  string    `json:"public_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}
