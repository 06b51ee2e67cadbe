package handler

import (
	"time"

	"github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/application/trade"
)

// CustomerListRequest is the admin customer listing query
type CustomerListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search" binding:"max=100"`
	Role      string `form:"role" binding:"omitempty,oneof=ADMIN CUSTOMER admin customer"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=created_at name email"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// UpdateCustomerRequest edits a customer; omitted fields are left unchanged
type UpdateCustomerRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=200"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
	Role  *string `json:"role" binding:"omitempty,oneof=ADMIN CUSTOMER admin customer"`
}

// CustomerDetailResponse is the admin customer detail view
type CustomerDetailResponse struct {
	identity.UserInfo
	CreatedAt time.Time               `json:"created_at"`
	Addresses []trade.AddressResponse `json:"addresses"`
	Orders    []trade.OrderResponse   `json:"orders"`
	Stats     identity.CustomerStats  `json:"stats"`
}

func toCustomerDetailResponse(d *identity.CustomerDetail) CustomerDetailResponse {
	addresses := make([]trade.AddressResponse, len(d.Addresses))
	for i := range d.Addresses {
		addresses[i] = trade.ToAddressResponse(&d.Addresses[i])
	}
	return CustomerDetailResponse{
		UserInfo:  d.User,
		CreatedAt: d.CreatedAt,
		Addresses: addresses,
		Orders:    trade.ToOrderResponses(d.Orders),
		Stats:     d.Stats,
	}
}
