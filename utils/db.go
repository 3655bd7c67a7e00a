package utils

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/DevNathanHub/Edau-sub000/models"
)

var DB *gorm.DB

func ConnectDatabase() {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	MigrateModels(DB)
}

// MigrateModels runs AutoMigrate for every model this service owns. Split out
// so tests can point a sqlite database at the same schema.
func MigrateModels(db *gorm.DB) {
	if err := db.AutoMigrate(
		&models.Order{},
		&models.PaymentAttempt{},
		&models.PaymentCallback{},
		&models.Receipt{},
	); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}
}
