package handlers

import (
	"github.com/filoshare/backend/internal/models"
	"github.com/filoshare/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// BundleHandler serves bundle share links
type BundleHandler struct {
	links *services.LinkService
}

func NewBundleHandler(links *services.LinkService) *BundleHandler {
	return &BundleHandler{links: links}
}

// Get returns a bundle and its member files, gated by the bundle's own
// expiry. Member metadata comes back in submission order.
func (h *BundleHandler) Get(c *fiber.Ctx) error {
	bundle, err := h.links.ResolveBundle(c.Params("bundleId"))
	if err != nil {
		return serviceError(c, err)
	}

	files := make([]fiber.Map, 0, len(bundle.Files))
	for _, f := range bundle.Files {
		files = append(files, fileMetadata(&f))
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"bundleId": bundle.ShareID,
		"bundle": fiber.Map{
			"_id":       bundle.ShareID,
			"createdAt": bundle.CreatedAt,
			"expiresAt": bundle.ExpiresAt,
			"password":  bundle.Protected(),
			"files":     files,
		},
	})
}

// fileMetadata is the public shape of a file; no password hash, only a
// protected flag
func fileMetadata(f *models.File) fiber.Map {
	return fiber.Map{
		"_id":       f.ShareID,
		"fileName":  f.FileName,
		"fileUrl":   f.FileURL,
		"fileSize":  f.FileSize,
		"fileType":  f.FileType,
		"downloads": f.Downloads,
		"expiresAt": f.ExpiresAt,
		"createdAt": f.CreatedAt,
		"password":  f.Protected(),
	}
}
