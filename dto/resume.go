package dto

import (
	"encoding/json"
	"time"
)

type UpsertResumeProfileRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Headline string `json:"headline,omitempty" validate:"omitempty,max=255"`
	Summary  string `json:"summary,omitempty" validate:"omitempty,max=2000"`
	Location string `json:"location,omitempty" validate:"omitempty,max=100"`
	Website  string `json:"website,omitempty" validate:"omitempty,url"`
}

func (u UpsertResumeProfileRequest) Validate() error {
	return GetValidator().Struct(u)
}

type UpsertResumeSectionRequest struct {
	Kind     string          `json:"kind" validate:"required,oneof=experience education skills links"`
	Position int             `json:"position" validate:"gte=0"`
	Entries  json.RawMessage `json:"entries" validate:"required"`
}

func (u UpsertResumeSectionRequest) Validate() error {
	return GetValidator().Struct(u)
}

type ResumeSectionResponse struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Position int             `json:"position"`
	Entries  json.RawMessage `json:"entries"`
}

type ResumeProfileResponse struct {
	ID        string                  `json:"id"`
	UserID    string                  `json:"user_id"`
	FullName  string                  `json:"full_name"`
	Headline  string                  `json:"headline,omitempty"`
	Summary   string                  `json:"summary,omitempty"`
	Location  string                  `json:"location,omitempty"`
	Website   string                  `json:"website,omitempty"`
	Sections  []ResumeSectionResponse `json:"sections"`
	UpdatedAt time.Time               `json:"updated_at"`
}
