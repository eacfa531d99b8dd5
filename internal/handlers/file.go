package handlers

import (
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/filoshare/backend/internal/config"
	"github.com/filoshare/backend/internal/middleware"
	"github.com/filoshare/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// FileHandler serves the upload pipeline and the link resolver
type FileHandler struct {
	cfg     *config.Config
	uploads *services.UploadService
	links   *services.LinkService
	email   *services.EmailService
}

func NewFileHandler(cfg *config.Config, uploads *services.UploadService, links *services.LinkService, email *services.EmailService) *FileHandler {
	return &FileHandler{cfg: cfg, uploads: uploads, links: links, email: email}
}

// incomingFromHeader opens a multipart file as a pipeline input; the
// returned closer must be called after the upload finishes
func incomingFromHeader(fh *multipart.FileHeader) (services.IncomingFile, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return services.IncomingFile{}, nil, err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return services.IncomingFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: contentType,
		Reader:      f,
	}, f, nil
}

func parseExpiryHours(v string) int {
	if v == "" {
		return 0
	}
	hours, err := strconv.Atoi(v)
	if err != nil || hours < 0 {
		return 0
	}
	return hours
}

// Upload handles the single-file path
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No file uploaded",
		})
	}

	incoming, reader, err := incomingFromHeader(fh)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Failed to read uploaded file",
		})
	}
	defer reader.Close()

	expiryHours := parseExpiryHours(c.FormValue("expiryHours"))
	password := c.FormValue("password")

	file, err := h.uploads.UploadSingle(c.Context(), userID, incoming, expiryHours, password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File uploaded successfully",
		"file":    file,
	})
}

// UploadMultiple handles the bundle path
func (h *FileHandler) UploadMultiple(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No files uploaded",
		})
	}

	headers := form.File["files"]
	incoming := make([]services.IncomingFile, 0, len(headers))
	readers := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	for _, fh := range headers {
		in, reader, err := incomingFromHeader(fh)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Failed to read uploaded file",
			})
		}
		readers = append(readers, reader)
		incoming = append(incoming, in)
	}

	expiryHours := parseExpiryHours(c.FormValue("expiryHours"))
	password := c.FormValue("password")

	bundle, err := h.uploads.UploadBundle(c.Context(), userID, incoming, expiryHours, password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Files uploaded successfully",
		"bundleId": bundle.ShareID,
	})
}

// MyFiles lists the caller's files, newest first
func (h *FileHandler) MyFiles(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	files, err := h.links.ListFilesForUser(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"files":   files,
	})
}

// PublicFile returns expiry-gated metadata for a share link. The
// password hash never leaves the server; only a protected flag does.
func (h *FileHandler) PublicFile(c *fiber.Ctx) error {
	file, err := h.links.ResolveFile(c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"file": fiber.Map{
			"_id":       file.ShareID,
			"fileName":  file.FileName,
			"fileUrl":   file.FileURL,
			"fileSize":  file.FileSize,
			"fileType":  file.FileType,
			"downloads": file.Downloads,
			"expiresAt": file.ExpiresAt,
			"createdAt": file.CreatedAt,
			"password":  file.Protected(),
		},
	})
}

// Download gates a download and hands back the object URL
func (h *FileHandler) Download(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	// Body is optional for unprotected files
	c.BodyParser(&req)

	file, err := h.links.Download(c.Params("id"), req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Download link generated",
		"fileUrl": file.FileURL,
	})
}

// Delete removes an owned file and reverses its quota
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	if err := h.uploads.DeleteFile(c.Context(), userID, c.Params("id")); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File deleted successfully",
	})
}

// EmailShareLink mails a share link for an owned file
func (h *FileHandler) EmailShareLink(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Email  string `json:"email"`
		FileID string `json:"fileId"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.FileID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Email and fileId are required",
		})
	}

	file, err := h.links.ResolveFile(req.FileID)
	if err != nil {
		return serviceError(c, err)
	}
	if file.UploadedBy != userID {
		return serviceError(c, services.ErrForbidden)
	}

	link := fmt.Sprintf("%s/file/%s", h.cfg.FrontendURL, file.ShareID)
	body := fmt.Sprintf(
		"<h2>A file was shared with you</h2>"+
			"<p><b>File:</b> %s</p>"+
			"<p>Click below to download:</p>"+
			"<a href=%q target=\"_blank\">%s</a>"+
			"<p style=\"color:gray;font-size:12px;\">If the file is password-protected, ask the sender for the password.</p>",
		file.FileName, link, link,
	)
	if err := h.email.SendEmail(req.Email, "File Share Link - FiloShare", body, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to send email",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email sent successfully",
	})
}
