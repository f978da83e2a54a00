package domain

import "time"

// OrderCustomer is the buyer block of an order.
type OrderCustomer struct {
	Name    string `json:"name" form:"name"`
	Email   string `gorm:"index" json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Address string `json:"address" form:"address"`
}

// OrderDetails is the purchased-plan block. FinalPrice is fixed at checkout
// as OriginalPrice - DiscountAmount and is never re-derived on read.
type OrderDetails struct {
	PlanID         int64    `json:"planId,string" form:"planId"`
	PlanName       string   `json:"planName" form:"planName"`
	CameraCount    int      `json:"cameraCount" form:"cameraCount"`
	OriginalPrice  float64  `json:"originalPrice" form:"originalPrice"`
	DiscountAmount float64  `json:"discountAmount" form:"discountAmount"`
	FinalPrice     float64  `json:"finalPrice" form:"finalPrice"`
	Features       []string `gorm:"serializer:json" json:"features" form:"features"`
}

// OrderPayment tracks the payment leg (statusflow.PaymentFlow).
type OrderPayment struct {
	Status   string  `gorm:"index;default:pending" json:"status" form:"status"`
	Amount   float64 `json:"amount" form:"amount"`
	Currency string  `gorm:"default:USD" json:"currency" form:"currency"`
}

// Order is a CCTV plan purchase. The nested blocks are edited field-by-field
// through dotted paths ("customer.name", "orderDetails.cameraCount").
type Order struct {
	ID        int64         `json:"id,string" form:"id"`
	Customer  OrderCustomer `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Details   OrderDetails  `gorm:"embedded;embeddedPrefix:detail_" json:"orderDetails"`
	Payment   OrderPayment  `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (Order) TableName() string {
	return "portal_order"
}
