package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/shared"
)

type ResumeHandler struct {
	resumeSvc ResumeServiceInterface
}

func NewResumeHandler(resumeSvc ResumeServiceInterface) *ResumeHandler {
	return &ResumeHandler{resumeSvc: resumeSvc}
}

// @Summary Get the caller's resume
// @Tags resume
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.ResumeProfileResponse}
// @Router /api/v1/resume [get]
func (h *ResumeHandler) Get(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	resp, err := h.resumeSvc.Get(userID)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Create or update the resume profile
// @Tags resume
// @Accept json
// @Produce json
// @Security Bearer
// @Param profile body dto.UpsertResumeProfileRequest true "Profile"
// @Success 200 {object} shared.Response{data=dto.ResumeProfileResponse}
// @Router /api/v1/resume [put]
func (h *ResumeHandler) UpsertProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	var req dto.UpsertResumeProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.resumeSvc.UpsertProfile(userID, req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Resume saved", resp)
}

// @Summary Add a resume section
// @Tags resume
// @Accept json
// @Produce json
// @Security Bearer
// @Param section body dto.UpsertResumeSectionRequest true "Section"
// @Success 201 {object} shared.Response{data=dto.ResumeSectionResponse}
// @Router /api/v1/resume/sections [post]
func (h *ResumeHandler) CreateSection(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	var req dto.UpsertResumeSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.resumeSvc.UpsertSection(userID, "", req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusCreated, "Section added", resp)
}

// @Summary Update a resume section
// @Tags resume
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Section ID"
// @Param section body dto.UpsertResumeSectionRequest true "Section"
// @Success 200 {object} shared.Response{data=dto.ResumeSectionResponse}
// @Router /api/v1/resume/sections/{id} [put]
func (h *ResumeHandler) UpdateSection(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	var req dto.UpsertResumeSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.resumeSvc.UpsertSection(userID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Section updated", resp)
}

// @Summary Delete a resume section
// @Tags resume
// @Produce json
// @Security Bearer
// @Param id path string true "Section ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/resume/sections/{id} [delete]
func (h *ResumeHandler) DeleteSection(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	if err := h.resumeSvc.DeleteSection(userID, c.Params("id")); err != nil {
		return err
	}
	return shared.ResponseJSON(c, http.StatusOK, "Section deleted", nil)
}

// @Summary Export the resume as printable HTML
// @Tags resume
// @Produce html
// @Security Bearer
// @Success 200 {string} string "HTML document"
// @Router /api/v1/resume/export [get]
func (h *ResumeHandler) Export(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	doc, err := h.resumeSvc.ExportHTML(userID)
	if err != nil {
		return err
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Status(http.StatusOK).Send(doc)
}
