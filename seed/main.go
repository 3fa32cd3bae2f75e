package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/seed/seeders"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Parse command line flags
	var (
		seedType = flag.String("type", "all", "Type of seeding: all, admin, articles")
		dsnFlag  = flag.String("dsn", "", "Database DSN (overrides DATABASE_URL env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	dsn := *dsnFlag
	if dsn == "" {
		dsn = databaseDSN()
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database")

	// Seeding can run before the API ever starts, so migrate first
	if err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.PasswordResetCode{},
		&model.Article{},
		&model.Tag{},
		&model.Comment{},
		&model.ResumeProfile{},
		&model.ResumeSection{},
		&model.MediaAsset{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create main seeder
	mainSeeder := seeders.NewMainSeeder(db)

	// Run seeding based on type
	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "admin":
		log.Println("Seeding admin account only...")
		if err := mainSeeder.SeedAdminOnly(); err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
	case "articles":
		log.Println("Seeding sample articles only...")
		if err := mainSeeder.SeedArticlesOnly(); err != nil {
			log.Fatalf("Failed to seed articles: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'admin', or 'articles'", *seedType)
	}

	log.Println("Seeding completed successfully!")
}

// databaseDSN mirrors the API's database configuration so both connect to the
// same instance.
func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := envOr("DB_PASSWORD", "postgres")
	dbname := envOr("DB_NAME", "inkwell")
	sslmode := envOr("DB_SSLMODE", "disable")
	timezone := envOr("DB_TIMEZONE", "UTC")

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func showHelp() {
	fmt.Println("Inkwell database seeder")
	fmt.Println()
	fmt.Println("Usage: seed [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -type string   Type of seeding: all, admin, articles (default \"all\")")
	fmt.Println("  -dsn string    Database DSN (overrides DATABASE_URL env var)")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SEED_ADMIN_EMAIL     Admin email (default admin@inkwell.local)")
	fmt.Println("  SEED_ADMIN_PASSWORD  Admin password (default ChangeMe123)")
}
