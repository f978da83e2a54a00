package domain

import "time"

// PricingPlan is a marketing catalog entry (camera package + service tier)
// shown on the public pricing page and referenced by orders at checkout.
type PricingPlan struct {
	ID          int64    `json:"id,string" form:"id"`
	Name        string   `gorm:"index" json:"name" form:"name"`
	CameraCount int      `json:"cameraCount" form:"cameraCount"`
	Price       float64  `json:"price" form:"price"`
	Discount    float64  `json:"discount" form:"discount"` // flat amount off Price
	Features    []string `gorm:"serializer:json" json:"features" form:"features"`
	Popular     bool     `json:"popular" form:"popular"`
	Enabled     bool     `gorm:"default:true" json:"enabled" form:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (PricingPlan) TableName() string {
	return "portal_plan"
}
