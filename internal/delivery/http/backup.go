package http

import (
	"errors"
	"fmt"
	"golang-portfolio/internal/dto"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

const maxImportBytes = 16 << 20

func (h *HttpAPIHandler) SetupBackup(base *echo.Group) {
	v1 := base.Group("/v1/backup")
	{
		v1.GET("/export", h.exportBackup)
		v1.POST("/import", h.importBackup)
	}
}

// exportBackup returns the bare snapshot so the file can be posted back to
// the import endpoint unchanged.
func (h *HttpAPIHandler) exportBackup(c echo.Context) error {
	snapshot, err := h.service.BackupService.Export(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	filename := fmt.Sprintf("portfolio-backup-%s.json", snapshot.ExportedAt.Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.JSON(http.StatusOK, snapshot)
}

func (h *HttpAPIHandler) importBackup(c echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxImportBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, dto.NewBaseResponse(http.StatusRequestEntityTooLarge, "backup file is too large", nil))
		}
		return h.respondBadRequest(c, errors.New("invalid request body"))
	}

	result, err := h.service.BackupService.Import(c.Request().Context(), raw)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Backup imported", result))
}
