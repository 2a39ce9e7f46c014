package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/go-playground/validator/v10"

	"doccompare/internal/model"
	"doccompare/internal/service"
)

const (
	invalidBodyMessage  = "Invalid input: request body must be a JSON object."
	invalidInputMessage = "Invalid input: doc1Text and doc2Text must be non-empty strings."
)

var validate = validator.New()

// Compare handles POST /api/compare.
//
// @Summary      Compare two documents
// @Description  Returns agreements, disputes and unique clauses of two contract-like documents.
// @Tags         compare
// @Accept       json
// @Produce      json
// @Param        request  body      model.ComparisonRequest  true  "Document texts"
// @Success      200      {object}  model.ComparisonResult
// @Failure      400      {object}  errorPayload
// @Failure      405      {object}  errorPayload
// @Failure      429      {object}  errorPayload
// @Failure      500      {object}  errorPayload
// @Router       /api/compare [post]
func Compare(svc service.ComparisonService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.ComparisonRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			if _, ok := err.(*json.UnmarshalTypeError); ok {
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", invalidInputMessage)
			}
			return writeError(c, fiber.StatusBadRequest, "INVALID_JSON", invalidBodyMessage)
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", invalidInputMessage)
		}

		res, err := svc.Compare(c.UserContext(), req.Doc1Text, req.Doc2Text)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "COMPARISON_FAILED", err.Error())
		}
		return c.JSON(res)
	}
}
