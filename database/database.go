package database

import (
	"fmt"
	"log"

	config "github.com/anjiri1684/hotel_booking/configs"
	"github.com/anjiri1684/hotel_booking/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.BookingStatus{},
		&models.PaymentStatus{},
		&models.Booking{},
		&models.Payment{},
		&models.Review{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedStatuses makes sure the booking and payment status reference tables
// hold the closed status sets the engine works with. Lookups by name happen
// once at startup when the status catalog is loaded.
func SeedStatuses(db *gorm.DB) error {
	bookingStatuses := []models.BookingStatus{
		{Name: "Pending", Description: "Awaiting confirmation", IsActive: true},
		{Name: "Confirmed", Description: "Booking has been confirmed", IsActive: true},
		{Name: "Completed", Description: "Stay has been completed", IsActive: true},
		{Name: "Cancelled", Description: "Booking has been cancelled", IsActive: true},
	}
	for _, status := range bookingStatuses {
		var row models.BookingStatus
		if err := db.Where(models.BookingStatus{Name: status.Name}).Attrs(status).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed booking status %q: %w", status.Name, err)
		}
	}

	paymentStatuses := []models.PaymentStatus{
		{Name: "Processing", Description: "Payment is being processed", IsActive: true},
		{Name: "Succeeded", Description: "Payment has been settled", IsActive: true},
		{Name: "Failed", Description: "Payment attempt failed", IsActive: true},
		{Name: "Refunded", Description: "Payment has been refunded", IsActive: true},
	}
	for _, status := range paymentStatuses {
		var row models.PaymentStatus
		if err := db.Where(models.PaymentStatus{Name: status.Name}).Attrs(status).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed payment status %q: %w", status.Name, err)
		}
	}

	log.Println("✅ Status catalog seeded successfully")
	return nil
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
