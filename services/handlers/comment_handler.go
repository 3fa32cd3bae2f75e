package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/shared"
)

type CommentHandler struct {
	commentSvc CommentServiceInterface
}

func NewCommentHandler(commentSvc CommentServiceInterface) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc}
}

// @Summary Post a comment
// @Description Comments land in the moderation queue unless auto-approval is on
// @Tags comments
// @Accept json
// @Produce json
// @Param slug path string true "Article slug"
// @Param comment body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} shared.Response{data=dto.CommentResponse}
// @Router /api/v1/articles/{slug}/comments [post]
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	authorID, _ := c.Locals(shared.UserID).(string)

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.commentSvc.Create(c.UserContext(), c.Params("slug"), authorID, clientIP(c), req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusCreated, "Comment submitted", resp)
}

// @Summary List approved comments for an article
// @Tags comments
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} shared.Response{data=dto.CommentListResponse}
// @Router /api/v1/articles/{slug}/comments [get]
func (h *CommentHandler) List(c *fiber.Ctx) error {
	resp, err := h.commentSvc.ListApproved(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List comments awaiting moderation
// @Tags comments
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.CommentListResponse}
// @Router /api/v1/admin/comments/pending [get]
func (h *CommentHandler) Pending(c *fiber.Ctx) error {
	resp, err := h.commentSvc.ListPending(c.QueryInt("page", 1), c.QueryInt("limit", 25))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Approve a comment
// @Tags comments
// @Produce json
// @Security Bearer
// @Param id path string true "Comment ID"
// @Success 200 {object} shared.Response{data=dto.CommentResponse}
// @Router /api/v1/admin/comments/{id}/approve [post]
func (h *CommentHandler) Approve(c *fiber.Ctx) error {
	resp, err := h.commentSvc.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Comment approved", resp)
}

// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security Bearer
// @Param id path string true "Comment ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/comments/{id} [delete]
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	if err := h.commentSvc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Comment deleted", nil)
}
