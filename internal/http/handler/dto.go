package handler

import (
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/listing"
	"docvault/internal/model"
	"docvault/internal/validation"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type permissionRequest struct {
	UserID     string `json:"userId" validate:"required,uuid"`
	AccessType string `json:"accessType" validate:"required,access_type"`
}

type listRequest struct {
	Search   string `query:"search" json:"search" validate:"max=200"`
	Tags     string `query:"tags" json:"tags" validate:"max=500"`
	Category string `query:"category" json:"category" validate:"max=100"`
	Page     int    `query:"page" json:"page"`
	Limit    int    `query:"limit" json:"limit"`
}

func (r listRequest) params() listing.Params {
	return listing.Params{
		Search:   r.Search,
		Tags:     r.Tags,
		Category: r.Category,
		Page:     r.Page,
		Limit:    r.Limit,
	}
}

// documentForm is the metadata accepted by upload and update. Nil fields were not sent.
type documentForm struct {
	Title       *string  `json:"title" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Tags        []string `json:"tags" validate:"max=50,dive,max=50"`
	HasTags     bool     `json:"-"`
	IsPublic    *bool    `json:"isPublic"`
}

// rawDocumentForm accepts tags as a JSON array or a string, and isPublic as a bool or a string.
type rawDocumentForm struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Tags        json.RawMessage `json:"tags"`
	IsPublic    json.RawMessage `json:"isPublic"`
}

// parseDocumentForm reads multipart fields or, for other non-empty bodies, a JSON object.
func parseDocumentForm(c *fiber.Ctx) (*documentForm, error) {
	var form *documentForm
	var err error

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		mf, ferr := c.MultipartForm()
		if ferr != nil {
			return nil, fiber.ErrBadRequest
		}
		form, err = documentFormFromMultipart(mf)
	} else if len(c.Body()) > 0 {
		var raw rawDocumentForm
		if jerr := json.Unmarshal(c.Body(), &raw); jerr != nil {
			return nil, fiber.ErrBadRequest
		}
		form, err = documentFormFromJSON(raw)
	} else {
		form = &documentForm{}
	}
	if err != nil {
		return nil, err
	}

	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	return form, nil
}

func documentFormFromMultipart(mf *multipart.Form) (*documentForm, error) {
	value := func(key string) *string {
		if vs, ok := mf.Value[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}

	form := &documentForm{
		Title:       value("title"),
		Description: value("description"),
		Category:    value("category"),
	}
	if v := value("tags"); v != nil && strings.TrimSpace(*v) != "" {
		tags, err := parseTags(*v)
		if err != nil {
			return nil, err
		}
		form.Tags, form.HasTags = tags, true
	}
	if v := value("isPublic"); v != nil {
		b := parseBool(*v)
		form.IsPublic = &b
	}
	return form, nil
}

func documentFormFromJSON(raw rawDocumentForm) (*documentForm, error) {
	form := &documentForm{
		Title:       raw.Title,
		Description: raw.Description,
		Category:    raw.Category,
	}

	if len(raw.Tags) > 0 && string(raw.Tags) != "null" {
		var list []string
		var s string
		switch {
		case json.Unmarshal(raw.Tags, &list) == nil:
			form.Tags, form.HasTags = cleanTags(list), true
		case json.Unmarshal(raw.Tags, &s) == nil:
			if strings.TrimSpace(s) != "" {
				tags, err := parseTags(s)
				if err != nil {
					return nil, err
				}
				form.Tags, form.HasTags = tags, true
			}
		default:
			return nil, invalidTags()
		}
	}

	if len(raw.IsPublic) > 0 && string(raw.IsPublic) != "null" {
		var b bool
		var s string
		switch {
		case json.Unmarshal(raw.IsPublic, &b) == nil:
		case json.Unmarshal(raw.IsPublic, &s) == nil:
			b = parseBool(s)
		default:
			return nil, validation.NewError("isPublic", "boolean", "isPublic must be a boolean")
		}
		form.IsPublic = &b
	}
	return form, nil
}

// parseTags accepts `["a","b"]` or `a, b`. Array elements are kept whole, commas included.
func parseTags(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			return nil, invalidTags()
		}
		return cleanTags(list), nil
	}
	tags := listing.ParseTags(s)
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// cleanTags trims each tag and drops blanks.
func cleanTags(list []string) []string {
	tags := make([]string, 0, len(list))
	for _, t := range list {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func invalidTags() error {
	return validation.NewError("tags", "tags", "tags must be a JSON array or a comma separated list")
}

func parseBool(s string) bool {
	return strings.TrimSpace(s) == "true"
}

// userView is the public shape of an identity.
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func newUserView(u *model.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
