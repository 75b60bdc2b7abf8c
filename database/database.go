package database

import (
	"time"

	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres. Duplicate-key errors are translated to gorm.ErrDuplicatedKey.
func Open(dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database handle")
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("database connected")
	return db, nil
}

// Models lists every table owned by the service, parents before children.
func Models() []any {
	return []any{
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductColor{},
		&models.ProductImage{},
		&models.ProductSize{},
		&models.VariantStock{},
		&models.Review{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ReturnRequest{},
		&models.WishlistItem{},
	}
}

// Migrate auto-migrates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}
	return nil
}
