package dto

import "time"

type CreateCommentRequest struct {
	AuthorName  string `json:"author_name" validate:"required,min=2,max=100"`
	AuthorEmail string `json:"author_email,omitempty" validate:"omitempty,email"`
	Content     string `json:"content" validate:"required,min=2,max=4000"`
}

func (c CreateCommentRequest) Validate() error {
	return GetValidator().Struct(c)
}

type CommentResponse struct {
	ID          string    `json:"id"`
	ArticleSlug string    `json:"article_slug"`
	AuthorName  string    `json:"author_name"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int               `json:"total"`
}
