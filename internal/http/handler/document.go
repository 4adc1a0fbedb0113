package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
	"docvault/internal/validation"
)

// documentID returns the :id path parameter and whether it is a UUID.
func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// fileInput opens the "file" form field. A request without one yields a nil input.
func fileInput(c *fiber.Ctx) (*service.FileInput, func(), error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}

	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" {
		ct = fiber.MIMEOctetStream
	}
	return &service.FileInput{
		Reader:      f,
		Name:        fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
	}, func() { _ = f.Close() }, nil
}

// uploadDocument godoc
// @Summary Upload a document
// @Tags documents
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "document file"
// @Param title formData string false "title"
// @Param description formData string false "description"
// @Param category formData string false "category"
// @Param tags formData string false "JSON array or comma separated"
// @Param isPublic formData string false "true to publish"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Router /documents/upload [post]
func (h *Handler) uploadDocument(c *fiber.Ctx) error {
	file, closeFile, err := fileInput(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	defer closeFile()
	if file == nil {
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file uploaded")
	}

	form, err := parseDocumentForm(c)
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return fe
		}
		return writeServiceError(c, h.logger, err)
	}

	in := service.UploadInput{File: file, Tags: form.Tags}
	if form.Title != nil {
		in.Title = *form.Title
	}
	if form.Description != nil {
		in.Description = *form.Description
	}
	if form.Category != nil {
		in.Category = *form.Category
	}
	if form.IsPublic != nil {
		in.IsPublic = *form.IsPublic
	}

	doc, err := h.documents.Upload(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// listDocuments godoc
// @Summary List visible documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param search query string false "title/description substring"
// @Param tags query string false "comma separated tags, any match"
// @Param category query string false "exact category"
// @Param page query int false "page, from 1"
// @Param limit query int false "page size"
// @Success 200 {object} service.DocumentListResult
// @Failure 400 {object} errorPayload
// @Router /documents [get]
func (h *Handler) listDocuments(c *fiber.Ctx) error {
	var req listRequest
	if err := c.QueryParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", "invalid query parameters")
	}
	if err := validation.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err)
	}

	res, err := h.documents.List(c.UserContext(), middleware.UserID(c), req.params())
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(res)
}

// getDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func (h *Handler) getDocument(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	doc, err := h.documents.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(doc)
}

// downloadDocument godoc
// @Summary Download the current file
// @Tags documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {file} binary
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/download [get]
func (h *Handler) downloadDocument(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	dl, err := h.documents.Download(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	c.Attachment(dl.FileName)
	if dl.ContentType != "" {
		c.Set(fiber.HeaderContentType, dl.ContentType)
	}
	size := -1
	if dl.Size > 0 {
		size = int(dl.Size)
	}
	// the stream is closed by fasthttp once sent
	return c.SendStream(dl.Body, size)
}

// updateDocument godoc
// @Summary Update metadata and optionally upload a new version
// @Tags documents
// @Accept mpfd,json
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Param file formData file false "new version"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /documents/{id} [put]
func (h *Handler) updateDocument(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	file, closeFile, err := fileInput(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	defer closeFile()

	form, err := parseDocumentForm(c)
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return fe
		}
		return writeServiceError(c, h.logger, err)
	}

	doc, err := h.documents.Update(c.UserContext(), middleware.UserID(c), id, service.UpdateInput{
		Title:       form.Title,
		Description: form.Description,
		Category:    form.Category,
		Tags:        form.Tags,
		SetTags:     form.HasTags,
		IsPublic:    form.IsPublic,
		File:        file,
	})
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Document updated successfully",
		"document": doc,
	})
}

// setPermission godoc
// @Summary Grant, change or revoke access
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Param body body permissionRequest true "grant"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/permissions [post]
func (h *Handler) setPermission(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	var req permissionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := validation.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	level, err := model.ParseAccessLevel(req.AccessType)
	if err != nil {
		return writeServiceError(c, h.logger, validation.NewError("accessType", "access_type", err.Error()))
	}

	doc, err := h.documents.SetPermission(c.UserContext(), middleware.UserID(c), id, req.UserID, level)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Permissions updated successfully",
		"document": doc,
	})
}

// deleteDocument godoc
// @Summary Delete a document and all of its versions
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [delete]
func (h *Handler) deleteDocument(c *fiber.Ctx) error {
	id, ok := documentID(c)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	if err := h.documents.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Document deleted successfully"})
}
