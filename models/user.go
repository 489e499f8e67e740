package models

const UserRoleAdmin = "admin"

// User is the minimal slice of the main backend's user table this service
// needs: resolving a session's username to its business. Account management
// lives in the main backend.
type User struct {
	ID         int    `gorm:"primary_key" json:"id"`
	Username   string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	BusinessId string `gorm:"index" json:"business_id"`
	Role       string `gorm:"size:20" json:"role"`
}
