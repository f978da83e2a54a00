package domain

import "time"

// User is a portal account. Email is the uniqueness key and never changes
// after creation; Role toggles between "user" and "admin"
// (statusflow.UserRoleFlow).
type User struct {
	ID        int64     `json:"id,string" form:"id"`
	FirstName string    `json:"firstName" form:"firstName"`
	LastName  string    `json:"lastName" form:"lastName"`
	Email     string    `gorm:"uniqueIndex" json:"email" form:"email"`
	Phone     string    `json:"phone" form:"phone"`
	Password  string    `json:"-" form:"-"`
	Role      string    `gorm:"index;default:user" json:"status" form:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "portal_user"
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
