package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/shared"
)

type ArticleHandler struct {
	articleSvc   ArticleServiceInterface
	commentSvc   CommentServiceInterface
	translateSvc TranslationServiceInterface
	mediaSvc     MediaServiceInterface
}

func NewArticleHandler(articleSvc ArticleServiceInterface, commentSvc CommentServiceInterface, translateSvc TranslationServiceInterface, mediaSvc MediaServiceInterface) *ArticleHandler {
	return &ArticleHandler{
		articleSvc:   articleSvc,
		commentSvc:   commentSvc,
		translateSvc: translateSvc,
		mediaSvc:     mediaSvc,
	}
}

// @Summary List published articles
// @Tags articles
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.ArticleListResponse}
// @Router /api/v1/articles [get]
func (h *ArticleHandler) List(c *fiber.Ctx) error {
	resp, err := h.articleSvc.List(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get an article by slug
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} shared.Response{data=dto.ArticleResponse}
// @Router /api/v1/articles/{slug} [get]
func (h *ArticleHandler) Get(c *fiber.Ctx) error {
	viewerID, _ := c.Locals(shared.UserID).(string)
	viewerRole, _ := c.Locals(shared.UserRole).(string)

	resp, err := h.articleSvc.Get(c.UserContext(), c.Params("slug"), viewerID, viewerRole)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Security Bearer
// @Param article body dto.CreateArticleRequest true "Article"
// @Success 201 {object} shared.Response{data=dto.ArticleResponse}
// @Router /api/v1/articles [post]
func (h *ArticleHandler) Create(c *fiber.Ctx) error {
	authorID, _ := c.Locals(shared.UserID).(string)

	var req dto.CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.articleSvc.Create(authorID, req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusCreated, "Article created", resp)
}

// @Summary Update an article
// @Tags articles
// @Accept json
// @Produce json
// @Security Bearer
// @Param slug path string true "Article slug"
// @Param article body dto.UpdateArticleRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.ArticleResponse}
// @Router /api/v1/articles/{slug} [put]
func (h *ArticleHandler) Update(c *fiber.Ctx) error {
	authorID, _ := c.Locals(shared.UserID).(string)
	authorRole, _ := c.Locals(shared.UserRole).(string)

	var req dto.UpdateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.articleSvc.Update(authorID, authorRole, c.Params("slug"), req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Article updated", resp)
}

// @Summary Delete an article
// @Tags articles
// @Produce json
// @Security Bearer
// @Param slug path string true "Article slug"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/articles/{slug} [delete]
func (h *ArticleHandler) Delete(c *fiber.Ctx) error {
	authorID, _ := c.Locals(shared.UserID).(string)
	authorRole, _ := c.Locals(shared.UserRole).(string)

	if err := h.articleSvc.Delete(authorID, authorRole, c.Params("slug")); err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Article deleted", nil)
}

// @Summary List the caller's articles, drafts included
// @Tags articles
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.ArticleListResponse}
// @Router /api/v1/articles/mine [get]
func (h *ArticleHandler) Mine(c *fiber.Ctx) error {
	authorID, _ := c.Locals(shared.UserID).(string)

	resp, err := h.articleSvc.ListByAuthor(authorID, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Search published articles
// @Tags articles
// @Produce json
// @Param q query string true "Search query"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.ArticleListResponse}
// @Router /api/v1/search [get]
func (h *ArticleHandler) Search(c *fiber.Ctx) error {
	req := dto.SearchRequest{
		Query: c.Query("q"),
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 10),
	}

	resp, err := h.articleSvc.Search(c.UserContext(), req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List tags in use
// @Tags articles
// @Produce json
// @Success 200 {object} shared.Response{data=[]dto.TagResponse}
// @Router /api/v1/tags [get]
func (h *ArticleHandler) Tags(c *fiber.Ctx) error {
	resp, err := h.articleSvc.ListTags(c.UserContext())
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Recent articles feed
// @Tags articles
// @Produce json
// @Success 200 {object} shared.Response{data=dto.FeedResponse}
// @Router /api/v1/feed [get]
func (h *ArticleHandler) Feed(c *fiber.Ctx) error {
	resp, err := h.articleSvc.Feed(c.UserContext())
	if err != nil {
		return err
	}
	c.Set("Cache-Control", "max-age=60")
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Record an article view
// @Description Counts at most one view per visitor per article per day
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} shared.Response{data=dto.InteractionResponse}
// @Router /api/v1/articles/{slug}/view [post]
func (h *ArticleHandler) View(c *fiber.Ctx) error {
	resp, err := h.articleSvc.RecordView(c.UserContext(), c.Params("slug"), clientIP(c))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Like an article
// @Description Counts at most one like per visitor per article per day
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} shared.Response{data=dto.InteractionResponse}
// @Router /api/v1/articles/{slug}/like [post]
func (h *ArticleHandler) Like(c *fiber.Ctx) error {
	resp, err := h.articleSvc.RecordLike(c.UserContext(), c.Params("slug"), clientIP(c))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Translate an article
// @Tags articles
// @Accept json
// @Produce json
// @Param slug path string true "Article slug"
// @Param request body dto.TranslateArticleRequest true "Target language"
// @Success 200 {object} shared.Response{data=dto.TranslateArticleResponse}
// @Router /api/v1/articles/{slug}/translate [post]
func (h *ArticleHandler) Translate(c *fiber.Ctx) error {
	var req dto.TranslateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.translateSvc.TranslateArticle(c.UserContext(), c.Params("slug"), req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Upload an article cover image
// @Tags articles
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param slug path string true "Article slug"
// @Param file formData file true "Image file"
// @Success 201 {object} shared.Response{data=dto.MediaUploadResponse}
// @Router /api/v1/articles/{slug}/cover [post]
func (h *ArticleHandler) UploadCover(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError(err, "file is required")
	}

	resp, err := h.mediaSvc.UploadCover(c.Params("slug"), file)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusCreated, "Cover uploaded", resp)
}

// @Summary Upload an article attachment
// @Tags articles
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param slug path string true "Article slug"
// @Param file formData file true "File"
// @Success 201 {object} shared.Response{data=dto.MediaUploadResponse}
// @Router /api/v1/articles/{slug}/attachments [post]
func (h *ArticleHandler) UploadAttachment(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError(err, "file is required")
	}

	resp, err := h.mediaSvc.UploadAttachment(c.Params("slug"), file)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusCreated, "Attachment uploaded", resp)
}

// @Summary List article media
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} shared.Response{data=[]dto.MediaUploadResponse}
// @Router /api/v1/articles/{slug}/media [get]
func (h *ArticleHandler) ListMedia(c *fiber.Ctx) error {
	resp, err := h.mediaSvc.ListForArticle(c.Params("slug"))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
