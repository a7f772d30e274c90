package db

import (
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"hsms-backend/internal/models"
	"hsms-backend/internal/utils"
)

// Open connects and migrates. TranslateError lets callers treat
// unique-index violations as gorm.ErrDuplicatedKey instead of driver errors.
func Open(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(database); err != nil {
		return nil, err
	}

	return database, nil
}

func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.RefreshToken{},
		&models.Staff{},
		&models.Attendance{},
		&models.LeaveRequest{},
		&models.ShiftAssignment{},
	)
}

// SeedAdmin creates the bootstrap admin account when it does not exist yet.
func SeedAdmin(database *gorm.DB, email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	var existing models.User
	if err := database.Where("email = ?", normalized).First(&existing).Error; err == nil {
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	return database.Create(&models.User{
		Email:        normalized,
		PasswordHash: hash,
		Name:         name,
		Role:         "admin",
	}).Error
}
