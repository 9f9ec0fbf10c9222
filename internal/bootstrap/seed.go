package bootstrap

import (
	"errors"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Course{},
		&entity.Lesson{},
		&entity.Enrollment{},
		&entity.Review{},
		&entity.Favorite{},
		&entity.CompletedLesson{},
	)
}

type AdminSeed struct {
	FullName string
	Email    string
	Password string
}

func SeedAdminUser(db *gorm.DB, seed AdminSeed, log *logger.Logger) error {
	if seed.Email == "" || seed.Password == "" {
		return errors.New("admin seed requires an email and a password")
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", seed.Email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("admin user already exists, skipping seed", "email", seed.Email)
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	fullName := seed.FullName
	if fullName == "" {
		fullName = "Administrator"
	}

	adminUser := entity.User{
		FullName:     fullName,
		Email:        seed.Email,
		PasswordHash: string(hashedPasswordBytes),
		Role:         entity.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Info("admin user seeded", "email", seed.Email)
	return nil
}

// SeedCategories creates the root categories when the table is empty.
func SeedCategories(db *gorm.DB, names []string, log *logger.Logger) error {
	var count int64
	if err := db.Model(&entity.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, name := range names {
		if err := db.Create(&entity.Category{Name: name}).Error; err != nil {
			return err
		}
	}

	log.Info("categories seeded", "count", len(names))
	return nil
}
