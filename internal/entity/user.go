package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a closed enumeration. Anything outside student/staff is rejected
// at the boundary instead of being defaulted.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleStaff
}

// User is the authentication identity. The application-level attributes live
// in Profile, keyed by the same id, so a User can exist briefly without a
// Profile when the second registration phase fails.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	Profile       *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile is the application-level user record. RollNumber, Phone and Batch
// are only meaningful when Role is student.
type Profile struct {
	UserID     uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FullName   string       `gorm:"size:100;not null" json:"full_name"`
	Role       Role         `gorm:"size:20;not null" json:"role"`
	RollNumber *string      `gorm:"size:50" json:"roll_number,omitempty"`
	Phone      *string      `gorm:"size:30" json:"phone,omitempty"`
	Batch      *string      `gorm:"size:20" json:"batch,omitempty"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	Files      []FileRecord `gorm:"foreignKey:UserID" json:"files,omitempty"`
}
