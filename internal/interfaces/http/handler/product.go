package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductHandler serves the public catalog and admin product management
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *catalog.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Public catalog listing. type and gender accept "all" for no filter.
// @Description  The price range matches either the list price or the sale price.
// @Tags         products
// @Produce      json
// @Param        type      query string   false "Product type"
// @Param        gender    query string   false "Gender"
// @Param        min_price query number   false "Lower price bound"
// @Param        max_price query number   false "Upper price bound"
// @Param        size      query []string false "Any of these sizes" collectionFormat(multi)
// @Param        sort      query string   false "new, price-asc or price-desc" Enums(new, price-asc, price-desc)
// @Success      200 {object} APIResponse[[]catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query catalog.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	var ok bool
	if query.MinPrice, ok = h.priceParam(c, "min_price"); !ok {
		return
	}
	if query.MaxPrice, ok = h.priceParam(c, "max_price"); !ok {
		return
	}

	products, err := h.productService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Get godoc
// @ID           getProduct
// @Summary      Get product detail
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.ProductDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AdminList godoc
// @ID           adminListProducts
// @Summary      List products (admin)
// @Description  Paginated, newest first. search matches name or description.
// @Tags         admin-products
// @Produce      json
// @Param        page   query int    false "Page number" default(1)
// @Param        limit  query int    false "Page size" default(20)
// @Param        search query string false "Search term"
// @Param        type   query string false "Product type"
// @Param        gender query string false "Gender"
// @Success      200 {object} APIResponse[[]catalog.ProductResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	var query catalog.AdminProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.productService.AdminList(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AdminGet godoc
// @ID           adminGetProduct
// @Summary      Get a product (admin)
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) AdminGet(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.AdminGet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @ID           createProduct
// @Summary      Create a product
// @Description  Inserts the product with its images, colors and sizes in one transaction
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalog.ProductRequest true "Product"
// @Success      201 {object} APIResponse[catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalog.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @ID           updateProduct
// @Summary      Replace a product
// @Description  Replaces the scalar fields and the full set of images, colors and sizes
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Product ID" format(uuid)
// @Param        request body catalog.ProductRequest true "Product"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalog.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Description  Refused with 409 while any ordered cart references the product
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[dto.MessageData]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Product deleted")
}

// CreateUploadURL godoc
// @ID           createProductImageUploadURL
// @Summary      Presign a product image upload
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalog.UploadURLRequest true "File to upload"
// @Success      200 {object} APIResponse[catalog.UploadURLResponse]
// @Failure      400 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/products/images/upload-url [post]
func (h *ProductHandler) CreateUploadURL(c *gin.Context) {
	var req catalog.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	upload, err := h.productService.CreateUploadURL(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// priceParam parses an optional decimal query parameter, writing 400 on garbage
func (h *ProductHandler) priceParam(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name)
		return nil, false
	}
	return &v, true
}
