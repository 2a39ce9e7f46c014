package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"doccompare/internal/model"
	"doccompare/internal/report"
	"doccompare/internal/service"
)

const invalidReportMessage = "Invalid report request: format must be txt or pdf."

func parseReportRequest(c *fiber.Ctx) (model.ReportRequest, bool) {
	var req model.ReportRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return req, false
	}
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := validate.Struct(req); err != nil {
		return req, false
	}
	req.Result.Normalize()
	return req, true
}

// ExportReport handles POST /api/reports/export and returns the file as an attachment.
//
// @Summary      Download a comparison report
// @Tags         reports
// @Accept       json
// @Produce      plain,application/pdf
// @Param        request  body      model.ReportRequest  true  "Comparison result and format"
// @Success      200
// @Failure      400      {object}  errorPayload
// @Router       /api/reports/export [post]
func ExportReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok := parseReportRequest(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REPORT_REQUEST", invalidReportMessage)
		}

		doc, err := svc.Render(c.UserContext(), req)
		if err != nil {
			if errors.Is(err, report.ErrUnsupportedFormat) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_REPORT_REQUEST", invalidReportMessage)
			}
			return err
		}

		c.Attachment(doc.Filename)
		c.Set(fiber.HeaderContentType, doc.ContentType)
		return c.Send(doc.Body)
	}
}

// PublishReport handles POST /api/reports: the report is stored and a temporary link returned.
//
// @Summary      Publish a comparison report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request  body      model.ReportRequest  true  "Comparison result and format"
// @Success      201      {object}  model.PublishedReport
// @Failure      400      {object}  errorPayload
// @Failure      503      {object}  errorPayload
// @Router       /api/reports [post]
func PublishReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok := parseReportRequest(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REPORT_REQUEST", invalidReportMessage)
		}

		pub, err := svc.Publish(c.UserContext(), req)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrStorageDisabled):
				return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_DISABLED", "report publishing is not configured")
			case errors.Is(err, report.ErrUnsupportedFormat):
				return writeError(c, fiber.StatusBadRequest, "INVALID_REPORT_REQUEST", invalidReportMessage)
			default:
				return err
			}
		}
		return c.Status(fiber.StatusCreated).JSON(pub)
	}
}
