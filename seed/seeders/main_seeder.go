package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Seed the admin account first (articles need an author)
	adminSeeder := NewAdminSeeder(s.db)
	if err := adminSeeder.SeedAdmin(); err != nil {
		log.Printf("Admin seeding failed: %v", err)
		return err
	}

	// 2. Seed the welcome article
	articleSeeder := NewArticleSeeder(s.db)
	if err := articleSeeder.SeedArticles(); err != nil {
		log.Printf("Article seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminOnly seeds just the admin account
func (s *MainSeeder) SeedAdminOnly() error {
	return NewAdminSeeder(s.db).SeedAdmin()
}

// SeedArticlesOnly seeds just the sample content
func (s *MainSeeder) SeedArticlesOnly() error {
	return NewArticleSeeder(s.db).SeedArticles()
}
