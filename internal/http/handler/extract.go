package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"doccompare/internal/extract"
)

// Extract handles POST /api/extract (multipart/form-data, field name: file).
//
// @Summary      Extract text from a document
// @Tags         extract
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  ".txt, .pdf or .docx file"
// @Success      200   {object}  model.ExtractionResult
// @Failure      400   {object}  errorPayload
// @Failure      422   {object}  errorPayload
// @Router       /api/extract [post]
func Extract(ex extract.Extractor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}

		res, err := ex.Extract(fh.Filename, data)
		if err != nil {
			var parseErr *extract.ParseError
			switch {
			case errors.Is(err, extract.ErrUnsupportedType):
				return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", extract.UnsupportedTypeMessage)
			case errors.As(err, &parseErr):
				return writeError(c, fiber.StatusUnprocessableEntity, "PARSE_ERROR", parseErr.Error())
			default:
				return err
			}
		}
		return c.JSON(res)
	}
}
