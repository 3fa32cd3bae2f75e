package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
)

// ResumeService maintains one structured resume per user and renders it to a
// self-contained printable HTML document.
type ResumeService struct {
	appContext.DefaultService

	sqlSvc *PostgresService

	exportTmpl *template.Template
}

const RESUME_SVC = "resume_svc"

func (svc ResumeService) Id() string {
	return RESUME_SVC
}

func (svc *ResumeService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ResumeService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)

	var err error
	svc.exportTmpl, err = template.New("resume_export").Parse(resumeExportHTML)
	if err != nil {
		return fmt.Errorf("failed to parse resume export template: %w", err)
	}
	return nil
}

func (svc *ResumeService) UpsertProfile(userID string, req dto.UpsertResumeProfileRequest) (*dto.ResumeProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	profile, err := svc.sqlSvc.GetResumeProfile(userID)
	if err != nil {
		profile = &model.ResumeProfile{
			ID:     uuid.NewString(),
			UserID: userID,
		}
	}

	profile.FullName = req.FullName
	profile.Headline = req.Headline
	profile.Summary = req.Summary
	profile.Location = req.Location
	profile.Website = req.Website

	if err := svc.sqlSvc.SaveResumeProfile(profile); err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to save resume profile")
	}

	return svc.Get(userID)
}

func (svc *ResumeService) Get(userID string) (*dto.ResumeProfileResponse, error) {
	profile, err := svc.sqlSvc.GetResumeProfile(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Resume not found")
	}

	sections, err := svc.sqlSvc.GetResumeSections(profile.ID)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to load resume sections")
	}

	out := make([]dto.ResumeSectionResponse, 0, len(sections))
	for _, s := range sections {
		out = append(out, dto.ResumeSectionResponse{
			ID:       s.ID,
			Kind:     s.Kind,
			Position: s.Position,
			Entries:  s.Entries,
		})
	}

	return &dto.ResumeProfileResponse{
		ID:        profile.ID,
		UserID:    profile.UserID,
		FullName:  profile.FullName,
		Headline:  profile.Headline,
		Summary:   profile.Summary,
		Location:  profile.Location,
		Website:   profile.Website,
		Sections:  out,
		UpdatedAt: profile.UpdatedAt,
	}, nil
}

func (svc *ResumeService) UpsertSection(userID, sectionID string, req dto.UpsertResumeSectionRequest) (*dto.ResumeSectionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}
	if !json.Valid(req.Entries) {
		return nil, shared.NewBadRequestError(nil, "Section entries must be valid JSON")
	}

	profile, err := svc.sqlSvc.GetResumeProfile(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Create a resume profile first")
	}

	var section *model.ResumeSection
	if sectionID != "" {
		section, err = svc.sqlSvc.GetResumeSection(sectionID)
		if err != nil || section.ProfileID != profile.ID {
			return nil, shared.NewNotFoundError(err, "Section not found")
		}
	} else {
		section = &model.ResumeSection{
			ID:        uuid.NewString(),
			ProfileID: profile.ID,
		}
	}

	section.Kind = req.Kind
	section.Position = req.Position
	section.Entries = req.Entries

	if err := svc.sqlSvc.SaveResumeSection(section); err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to save resume section")
	}

	return &dto.ResumeSectionResponse{
		ID:       section.ID,
		Kind:     section.Kind,
		Position: section.Position,
		Entries:  section.Entries,
	}, nil
}

func (svc *ResumeService) DeleteSection(userID, sectionID string) error {
	profile, err := svc.sqlSvc.GetResumeProfile(userID)
	if err != nil {
		return shared.NewNotFoundError(err, "Resume not found")
	}

	section, err := svc.sqlSvc.GetResumeSection(sectionID)
	if err != nil || section.ProfileID != profile.ID {
		return shared.NewNotFoundError(err, "Section not found")
	}

	if err := svc.sqlSvc.DeleteResumeSection(sectionID); err != nil {
		return shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to delete section")
	}
	return nil
}

type resumeExportSection struct {
	Title   string
	Entries []map[string]interface{}
}

type resumeExportData struct {
	Profile  *dto.ResumeProfileResponse
	Sections []resumeExportSection
}

var resumeSectionTitles = map[string]string{
	model.ResumeSectionExperience: "Experience",
	model.ResumeSectionEducation:  "Education",
	model.ResumeSectionSkills:     "Skills",
	model.ResumeSectionLinks:      "Links",
}

// ExportHTML renders the resume as a standalone HTML page suitable for
// printing or saving as PDF from the browser.
func (svc *ResumeService) ExportHTML(userID string) ([]byte, error) {
	resume, err := svc.Get(userID)
	if err != nil {
		return nil, err
	}

	data := resumeExportData{Profile: resume}
	for _, s := range resume.Sections {
		var entries []map[string]interface{}
		if err := json.Unmarshal(s.Entries, &entries); err != nil {
			// Entries validated on write; a single bad row skips, not fails.
			continue
		}
		title := resumeSectionTitles[s.Kind]
		if title == "" {
			title = s.Kind
		}
		data.Sections = append(data.Sections, resumeExportSection{Title: title, Entries: entries})
	}

	var buf bytes.Buffer
	if err := svc.exportTmpl.Execute(&buf, data); err != nil {
		return nil, shared.NewInternalError(err, "Failed to render resume")
	}
	return buf.Bytes(), nil
}

const resumeExportHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Profile.FullName}} - Resume</title>
    <style>
        body { font-family: Georgia, serif; color: #1a1a1a; max-width: 760px; margin: 0 auto; padding: 40px 20px; }
        h1 { margin-bottom: 0; }
        .headline { color: #555; font-style: italic; margin-top: 4px; }
        .meta { color: #777; font-size: 14px; }
        h2 { border-bottom: 1px solid #ccc; padding-bottom: 4px; margin-top: 32px; }
        .entry { margin-bottom: 16px; }
        .entry dt { font-weight: bold; text-transform: capitalize; }
        .entry dd { margin: 0 0 4px 0; }
        @media print { body { padding: 0; } }
    </style>
</head>
<body>
    <h1>{{.Profile.FullName}}</h1>
    {{if .Profile.Headline}}<p class="headline">{{.Profile.Headline}}</p>{{end}}
    <p class="meta">
        {{if .Profile.Location}}{{.Profile.Location}}{{end}}
        {{if .Profile.Website}} &middot; {{.Profile.Website}}{{end}}
    </p>
    {{if .Profile.Summary}}<p>{{.Profile.Summary}}</p>{{end}}

    {{range .Sections}}
    <h2>{{.Title}}</h2>
    {{range .Entries}}
    <dl class="entry">
        {{range $k, $v := .}}
        <dt>{{$k}}</dt><dd>{{$v}}</dd>
        {{end}}
    </dl>
    {{end}}
    {{end}}
</body>
</html>
`
