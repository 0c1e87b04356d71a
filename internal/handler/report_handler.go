package handler

import (
	"bytes"
	"fmt"
	"time"

	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GET /reports
func (h *ReportHandler) GetReports(c *fiber.Ctx) error {
	report, err := h.service.Build(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// GET /reports/export.xlsx
func (h *ReportHandler) ExportXLSX(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportXLSX(c.UserContext(), &buf); err != nil {
		return err
	}

	fileName := fmt.Sprintf("inventory_report_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.Send(buf.Bytes())
}
