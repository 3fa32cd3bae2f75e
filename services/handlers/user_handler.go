package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/shared"
)

type UserHandler struct {
	userSvc UserServiceInterface
}

func NewUserHandler(userSvc UserServiceInterface) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.UserInfo}
// @Router /api/v1/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	resp, err := h.userSvc.GetProfile(userID)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param profile body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} shared.Response{data=dto.UserInfo}
// @Router /api/v1/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.userSvc.UpdateProfile(userID, req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Profile updated", resp)
}
