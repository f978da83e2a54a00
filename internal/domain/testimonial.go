package domain

import "time"

// Testimonial is a customer review. Rating runs 0.5 to 5 in half-star steps;
// only approved entries are served on the public site.
type Testimonial struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Email       string    `gorm:"index" json:"email" form:"email"`
	Profession  string    `json:"profession" form:"profession"`
	Rating      float64   `json:"rating" form:"rating"`
	Testimonial string    `gorm:"type:text" json:"testimonial" form:"testimonial"`
	Image       string    `gorm:"size:1024" json:"image" form:"image"`
	Status      string    `gorm:"index;default:pending" json:"status" form:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Testimonial) TableName() string {
	return "portal_testimonial"
}
