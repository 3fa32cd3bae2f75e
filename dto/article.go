package dto

import "time"

type CreateArticleRequest struct {
	Title   string   `json:"title" validate:"required,min=3,max=255"`
	Summary string   `json:"summary,omitempty" validate:"omitempty,max=1000"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=64"`
	Status  string   `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

func (c CreateArticleRequest) Validate() error {
	return GetValidator().Struct(c)
}

type UpdateArticleRequest struct {
	Title   string   `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Summary string   `json:"summary,omitempty" validate:"omitempty,max=1000"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=64"`
	Status  string   `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

func (u UpdateArticleRequest) Validate() error {
	return GetValidator().Struct(u)
}

type ArticleResponse struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Content     string     `json:"content,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	AuthorID    string     `json:"author_id"`
	AuthorName  string     `json:"author_name,omitempty"`
	Status      string     `json:"status"`
	Tags        []string   `json:"tags"`
	ViewCount   int64      `json:"view_count"`
	LikeCount   int64      `json:"like_count"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ArticleListResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type TagResponse struct {
	Name         string `json:"name"`
	ArticleCount int    `json:"article_count"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required,min=2,max=100"`
	Page  int    `json:"page,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

func (s SearchRequest) Validate() error {
	return GetValidator().Struct(s)
}

type FeedItem struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type FeedResponse struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	Items       []FeedItem `json:"items"`
	GeneratedAt time.Time  `json:"generated_at"`
}

type InteractionResponse struct {
	Counted bool  `json:"counted"`
	Total   int64 `json:"total"`
}

type TranslateArticleRequest struct {
	TargetLang string `json:"target_lang" validate:"required,min=2,max=5"`
}

func (t TranslateArticleRequest) Validate() error {
	return GetValidator().Struct(t)
}

type TranslateArticleResponse struct {
	Slug           string `json:"slug"`
	TargetLang     string `json:"target_lang"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	SourceLang     string `json:"source_lang,omitempty"`
	FromCache      bool   `json:"from_cache"`
	CharacterCount int    `json:"character_count"`
}

type MediaUploadResponse struct {
	AssetID     string `json:"asset_id"`
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
