package bootstrap

import (
	"log"

	"collegease.app/server/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.FileRecord{},
	)
}

// SeedStaffUser ensures a ready-to-use staff account exists so a fresh
// development database is browsable without registering by hand. Idempotent;
// an existing account is left untouched.
func SeedStaffUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "staff@collegease.dev").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Staff user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("staff123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	staffUser := entity.User{
		Email:         "staff@collegease.dev",
		PasswordHash:  string(hashedPasswordBytes),
		EmailVerified: true,
	}

	if err := db.Create(&staffUser).Error; err != nil {
		return err
	}

	staffProfile := entity.Profile{
		UserID:   staffUser.ID,
		FullName: "Registrar Office",
		Role:     entity.RoleStaff,
	}

	if err := db.Create(&staffProfile).Error; err != nil {
		return err
	}

	log.Println("Staff user seeded successfully")
	log.Println("   Email: staff@collegease.dev")
	log.Println("   Password: staff123")

	return nil
}
