package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Product errors
var (
	ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")
	ErrProductOrdered  = shared.NewDomainError("PRODUCT_ORDERED", "Product is part of existing orders and cannot be deleted")
)

// Gender values used by the storefront filters
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderUnisex = "unisex"
)

// FacetAll is the filter value that disables a facet predicate
const FacetAll = "all"

var facetCaser = cases.Lower(language.Und)

// NormalizeFacet lower-cases and trims a type/gender value so filters and stored rows agree
func NormalizeFacet(v string) string {
	return facetCaser.String(strings.TrimSpace(v))
}

// Product is a catalog item and the aggregate root for its images, colors and sizes
type Product struct {
	shared.BaseAggregateRoot
	Name        string           `gorm:"type:varchar(200);not null"`
	Description string           `gorm:"type:text"`
	Material    string           `gorm:"type:varchar(100)"`
	Type        string           `gorm:"type:varchar(50);not null;index"`
	Gender      string           `gorm:"type:varchar(20);not null;index"`
	Price       decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	SalePrice   *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Images      []ProductImage   `gorm:"foreignKey:ProductID"`
	Colors      []ProductColor   `gorm:"foreignKey:ProductID"`
	Sizes       []ProductSize    `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductImage is an image owned by a single product
type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"column:url;type:varchar(1000);not null"`
	Alt       string    `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// ProductColor is a color variant owned by a single product
type ProductColor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(50);not null"`
	Color     string    `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (ProductColor) TableName() string {
	return "product_colors"
}

// ProductSize is a size label owned by a single product
type ProductSize struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Value     string    `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ProductSize) TableName() string {
	return "product_sizes"
}

// ImageInput describes an image to attach to a product
type ImageInput struct {
	URL string
	Alt string
}

// ColorInput describes a color to attach to a product
type ColorInput struct {
	Name  string
	Color string
}

// ProductDetails groups the mutable scalar fields of a product
type ProductDetails struct {
	Name        string
	Description string
	Material    string
	Type        string
	Gender      string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
}

// NewProduct creates a new product from its details
func NewProduct(details ProductDetails) (*Product, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	product.applyDetails(details)
	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update replaces the scalar fields of the product
func (p *Product) Update(details ProductDetails) error {
	if err := validateDetails(details); err != nil {
		return err
	}
	p.applyDetails(details)
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// ReplaceFacets discards all images, colors and sizes and installs the given set.
// Image alt text defaults to the product name.
func (p *Product) ReplaceFacets(images []ImageInput, colors []ColorInput, sizes []string) error {
	newImages := make([]ProductImage, 0, len(images))
	for _, img := range images {
		url := strings.TrimSpace(img.URL)
		if url == "" {
			return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot be empty")
		}
		alt := strings.TrimSpace(img.Alt)
		if alt == "" {
			alt = p.Name
		}
		newImages = append(newImages, ProductImage{ID: uuid.New(), ProductID: p.ID, URL: url, Alt: alt})
	}

	newColors := make([]ProductColor, 0, len(colors))
	for _, c := range colors {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Color) == "" {
			return shared.NewDomainError("INVALID_COLOR", "Color name and value are required")
		}
		newColors = append(newColors, ProductColor{ID: uuid.New(), ProductID: p.ID, Name: strings.TrimSpace(c.Name), Color: strings.TrimSpace(c.Color)})
	}

	newSizes := make([]ProductSize, 0, len(sizes))
	for _, s := range sizes {
		v := strings.TrimSpace(s)
		if v == "" {
			return shared.NewDomainError("INVALID_SIZE", "Size cannot be empty")
		}
		newSizes = append(newSizes, ProductSize{ID: uuid.New(), ProductID: p.ID, Value: v})
	}

	p.Images = newImages
	p.Colors = newColors
	p.Sizes = newSizes
	return nil
}

// EffectivePrice returns the sale price when set, otherwise the list price
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

// ImageURLs returns the image URLs in stored order
func (p *Product) ImageURLs() []string {
	urls := make([]string, len(p.Images))
	for i, img := range p.Images {
		urls[i] = img.URL
	}
	return urls
}

// SizeValues returns the size labels in stored order
func (p *Product) SizeValues() []string {
	values := make([]string, len(p.Sizes))
	for i, s := range p.Sizes {
		values[i] = s.Value
	}
	return values
}

// MarkDeleted records the deletion event
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

func (p *Product) applyDetails(d ProductDetails) {
	p.Name = strings.TrimSpace(d.Name)
	p.Description = strings.TrimSpace(d.Description)
	p.Material = strings.TrimSpace(d.Material)
	p.Type = NormalizeFacet(d.Type)
	p.Gender = NormalizeFacet(d.Gender)
	p.Price = d.Price
	p.SalePrice = nil
	if d.SalePrice != nil && !d.SalePrice.IsZero() {
		sp := *d.SalePrice
		p.SalePrice = &sp
	}
}

func validateDetails(d ProductDetails) error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(d.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if strings.TrimSpace(d.Type) == "" {
		return shared.NewDomainError("INVALID_TYPE", "Product type cannot be empty")
	}
	if strings.TrimSpace(d.Gender) == "" {
		return shared.NewDomainError("INVALID_GENDER", "Product gender cannot be empty")
	}
	if !d.Price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	if d.SalePrice != nil && d.SalePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}
	return nil
}
