package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"
)

type AdminHandler struct {
	userSvc      UserServiceInterface
	cacheSvc     CacheServiceInterface
	auditSvc     AuditServiceInterface
	rateLimitSvc RateLimitServiceInterface
	mediaSvc     MediaServiceInterface
}

func NewAdminHandler(userSvc UserServiceInterface, cacheSvc CacheServiceInterface, auditSvc AuditServiceInterface, rateLimitSvc RateLimitServiceInterface, mediaSvc MediaServiceInterface) *AdminHandler {
	return &AdminHandler{
		userSvc:      userSvc,
		cacheSvc:     cacheSvc,
		auditSvc:     auditSvc,
		rateLimitSvc: rateLimitSvc,
		mediaSvc:     mediaSvc,
	}
}

// @Summary List users
// @Tags admin
// @Produce json
// @Security Bearer
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.AdminUserListResponse}
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	resp, err := h.userSvc.AdminListUsers(c.QueryInt("page", 1), c.QueryInt("limit", 25))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Update a user's role or active state
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Param user body dto.AdminUpdateUserRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.AdminUserInfo}
// @Router /api/v1/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.userSvc.AdminUpdateUser(c.Params("id"), req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "User updated", resp)
}

// @Summary Audit log
// @Tags admin
// @Produce json
// @Security Bearer
// @Param user_id query string false "Filter by user ID"
// @Param action query string false "Filter by action"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=dto.AuditLogResponse}
// @Router /api/v1/admin/audit [get]
func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	resp, err := h.auditSvc.List(c.Query("user_id"), c.Query("action"), c.QueryInt("page", 1), c.QueryInt("limit", 25))
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Cache key counts per namespace
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.CacheStatsResponse}
// @Router /api/v1/admin/cache/stats [get]
func (h *AdminHandler) CacheStats(c *fiber.Ctx) error {
	return shared.ResponseJSON(c, http.StatusOK, "Success", h.cacheSvc.GetCacheStats(c.UserContext()))
}

// @Summary Invalidate a cache namespace
// @Description Namespaces: articles, tags, comments, search, feed, all
// @Tags admin
// @Produce json
// @Security Bearer
// @Param namespace path string true "Namespace"
// @Success 200 {object} shared.Response{data=dto.CacheInvalidationResponse}
// @Router /api/v1/admin/cache/{namespace} [delete]
func (h *AdminHandler) InvalidateCache(c *fiber.Ctx) error {
	ctx := c.UserContext()
	namespace := c.Params("namespace")

	var deleted int64
	switch namespace {
	case "articles":
		deleted = h.cacheSvc.InvalidateAllArticles(ctx)
	case "tags":
		deleted = h.cacheSvc.InvalidateAllTags(ctx)
	case "comments":
		deleted = h.cacheSvc.InvalidateAllComments(ctx)
	case "search":
		deleted = h.cacheSvc.InvalidateSearchCache(ctx)
	case "feed":
		deleted = h.cacheSvc.InvalidateFeedCache(ctx)
	case "all":
		deleted = h.cacheSvc.InvalidateAllCaches(ctx)
	default:
		return shared.NewBadRequestError(nil, "Unknown cache namespace")
	}

	adminID, _ := c.Locals(shared.UserID).(string)
	h.auditSvc.Record(adminID, model.AuditActionCacheFlush, clientIP(c), c.Get("User-Agent"), true, namespace)

	return shared.ResponseJSON(c, http.StatusOK, "Cache invalidated", dto.CacheInvalidationResponse{
		Namespace: namespace,
		Deleted:   deleted,
	})
}

// @Summary Reset the email rate limit for an address
// @Tags admin
// @Produce json
// @Security Bearer
// @Param email path string true "Email address"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/rate-limit/{email} [delete]
func (h *AdminHandler) ResetRateLimit(c *fiber.Ctx) error {
	if err := h.rateLimitSvc.Reset(c.UserContext(), c.Params("email")); err != nil {
		return shared.NewInternalError(err, "Failed to reset rate limit")
	}
	return shared.ResponseJSON(c, http.StatusOK, "Rate limit reset", nil)
}

// @Summary Delete a media asset
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path string true "Asset ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/media/{id} [delete]
func (h *AdminHandler) DeleteMedia(c *fiber.Ctx) error {
	if err := h.mediaSvc.DeleteAsset(c.Params("id")); err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Media deleted", nil)
}
