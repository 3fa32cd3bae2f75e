package seeders

import (
	"encoding/json"
	"log"
	"time"

	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArticleSeeder plants a welcome post so the public surface is not empty on a
// fresh install.
type ArticleSeeder struct {
	db *gorm.DB
}

func NewArticleSeeder(db *gorm.DB) *ArticleSeeder {
	return &ArticleSeeder{db: db}
}

func (s *ArticleSeeder) SeedArticles() error {
	var count int64
	if err := s.db.Model(&model.Article{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Articles already exist, skipping article seeding")
		return nil
	}

	var admin model.User
	if err := s.db.Where("role = ?", shared.RoleAdmin).First(&admin).Error; err != nil {
		log.Println("No admin user found, skipping article seeding")
		return nil
	}

	tags, _ := json.Marshal([]string{"meta"})
	now := time.Now()

	welcome := model.Article{
		ID:          uuid.NewString(),
		Slug:        "hello-world",
		Title:       "Hello, World",
		Summary:     "The first post on this site.",
		Content:     "Welcome to Inkwell. This post was created automatically; feel free to edit or delete it.",
		AuthorID:    admin.ID,
		Status:      model.ArticleStatusPublished,
		Tags:        tags,
		PublishedAt: &now,
	}

	if err := s.db.Create(&welcome).Error; err != nil {
		log.Printf("Error creating welcome article: %v", err)
		return err
	}

	tag := model.Tag{
		ID:           uuid.NewString(),
		Name:         "meta",
		ArticleCount: 1,
	}
	if err := s.db.Create(&tag).Error; err != nil {
		log.Printf("Error creating seed tag: %v", err)
	}

	log.Printf("Created welcome article: %s", welcome.Slug)
	return nil
}
