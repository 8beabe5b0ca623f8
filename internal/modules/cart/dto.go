package cart

import (
	"time"

	"tripcart/internal/domain"
)

type AddItemRequest struct {
	ProductID       int64                   `json:"product_id" binding:"required"`
	VariantID       int64                   `json:"variant_id" binding:"required"`
	VariantItemID   int64                   `json:"variant_item_id" binding:"required"`
	ProductName     string                  `json:"product_name"`
	VariantName     string                  `json:"variant_name"`
	StartTime       time.Time               `json:"start_time" binding:"required"`
	AgeGroupOptions []domain.AgeGroupOption `json:"age_group_options" binding:"required,min=1"`
}

type UpdateItemRequest struct {
	AgeGroupOptions []domain.AgeGroupOption `json:"age_group_options" binding:"required,min=1"`
}

// ItemRef is the lightweight handle returned on add.
type ItemRef struct {
	CartID int64 `json:"cart_id"`
	ItemID int64 `json:"item_id"`
}
