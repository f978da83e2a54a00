package domain

import "time"

// Contact is a contact-form submission from the public site or dashboard.
// Status cycles pending -> processed -> rejected -> pending (statusflow.ContactFlow).
type Contact struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Email     string    `gorm:"index" json:"email" form:"email"`
	Subject   string    `json:"subject" form:"subject"`
	Message   string    `gorm:"type:text" json:"message" form:"message"`
	Status    string    `gorm:"index;default:pending" json:"status" form:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Contact) TableName() string {
	return "portal_contact"
}
