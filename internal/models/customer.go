package models

// Customer roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Customer represents a person identified by their mobile number.
// Created on first login; the stored name stays authoritative afterwards.
type Customer struct {
	BaseModel
	Name         string  `json:"name"`
	Mobile       string  `gorm:"uniqueIndex" json:"mobile"`
	Role         string  `gorm:"default:customer" json:"role"`
	PasswordHash string  `json:"-"`
	Orders       []Order `gorm:"foreignKey:CustomerMobile;references:Mobile" json:"orders,omitempty"`
}
