package domain

import "time" // Timestamps

// User Model
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`                                // Primary key
	Username   string    `gorm:"size:150;uniqueIndex;not null" json:"username"`       // Unique username, immutable after registration
	Email      string    `gorm:"size:254;uniqueIndex;not null" json:"email"`          // Unique email address
	Password   string    `gorm:"not null" json:"-"`                                   // Bcrypt hash, never serialized
	Bio        string    `gorm:"size:300" json:"bio"`                                 // Optional short bio
	ProfilePic string    `gorm:"size:255" json:"profile_pic"`                         // Optional image reference
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`           // Verified flag
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`                    // Registration time
}

// Field limits shared by validation and the schema
const (
	MinUsernameLength = 5   // Minimum username length
	MinPasswordLength = 8   // Minimum password length
	MaxBioLength      = 300 // Maximum bio length
)
