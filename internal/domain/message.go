package domain

import "time"

// Message is a service inquiry (installation quote, maintenance request).
// Status moves new -> in_progress -> resolved -> archived and stops there.
type Message struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Email     string    `gorm:"index" json:"email" form:"email"`
	Phone     string    `json:"phone" form:"phone"`
	Service   string    `gorm:"index" json:"service" form:"service"`
	Message   string    `gorm:"type:text" json:"message" form:"message"`
	Status    string    `gorm:"index;default:new" json:"status" form:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Message) TableName() string {
	return "portal_message"
}
