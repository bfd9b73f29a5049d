package descargo

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reclamala-backend/internal/llm"
	"reclamala-backend/internal/ocr"
	"reclamala-backend/internal/render"
	"reclamala-backend/internal/shared/server/middleware"
	"reclamala-backend/internal/shared/server/respond"
	"reclamala-backend/internal/uploads"
)

const (
	MsgMissingImage   = "No se proporcionó imagen"
	MsgNotImage       = "Solo se permiten imágenes"
	MsgTooLarge       = "La imagen supera el tamaño máximo de 5MB"
	MsgInvalidForm    = "Datos del formulario inválidos"
	MsgNoText         = "No se detectó texto en la imagen"
	MsgOCRFailed      = "Error al procesar la imagen con OCR"
	MsgGenerateFailed = "Error al generar el descargo legal"
	MsgRequestFailed  = "Error al procesar la solicitud"
)

// multipartOverhead leaves room for the text fields around the image.
const multipartOverhead = 1 << 20

const pdfFileName = "descargo.pdf"

// Handler serves the descargo endpoint.
type Handler struct {
	Pipeline     *Pipeline
	MaxBodyBytes int64
}

// NewHandler constructs a Handler for images up to maxImageBytes.
func NewHandler(p *Pipeline, maxImageBytes int64) *Handler {
	if maxImageBytes <= 0 {
		maxImageBytes = uploads.DefaultMaxBytes
	}
	return &Handler{Pipeline: p, MaxBodyBytes: maxImageBytes + multipartOverhead}
}

// RegisterRoutes attaches POST /descargo, with mw running before the handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.create)
	rg.POST("/descargo", handlers...)
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes)

	image, err := c.FormFile("imagen")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "file_too_large", MsgTooLarge)
			return
		}
		respond.Error(c, http.StatusBadRequest, "missing_image", MsgMissingImage)
		return
	}

	var form Form
	if err := c.ShouldBind(&form); err != nil {
		respond.ErrorWithFields(c, http.StatusBadRequest, "validation_error", MsgInvalidForm, fieldErrors(err))
		return
	}

	req := Request{
		RequestID: middleware.RequestIDFromContext(c),
		Image:     image,
		Profile:   form.Profile(),
	}
	doc, err := h.Pipeline.Run(c.Request.Context(), req, func(s Stage) {
		c.Set("pipelineStage", string(s))
	})
	if err != nil {
		status, code, msg := classify(err)
		respond.Error(c, status, code, msg)
		return
	}

	c.Set("pipelineStage", string(StageResponding))
	respond.Attachment(c, "application/pdf", pdfFileName, doc)
	c.Set("pipelineStage", string(StageCleaned))
}

// classify maps a pipeline failure to the response. Causes stay in the logs.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, uploads.ErrMissingImage):
		return http.StatusBadRequest, "missing_image", MsgMissingImage
	case errors.Is(err, uploads.ErrNotImage):
		return http.StatusBadRequest, "invalid_file_type", MsgNotImage
	case errors.Is(err, uploads.ErrTooLarge):
		return http.StatusBadRequest, "file_too_large", MsgTooLarge
	case errors.Is(err, ocr.ErrNoText):
		return http.StatusInternalServerError, "ocr_no_text", MsgNoText
	case errors.Is(err, ocr.ErrService):
		return http.StatusInternalServerError, "ocr_failed", MsgOCRFailed
	case errors.Is(err, llm.ErrGenerationFailed), errors.Is(err, ErrInvalidLetter):
		return http.StatusInternalServerError, "generation_failed", MsgGenerateFailed
	case errors.Is(err, render.ErrRender):
		return http.StatusInternalServerError, "render_failed", MsgRequestFailed
	}

	switch FailedStage(err) {
	case StageExtracting:
		return http.StatusInternalServerError, "ocr_failed", MsgOCRFailed
	case StageGenerating:
		return http.StatusInternalServerError, "generation_failed", MsgGenerateFailed
	default:
		return http.StatusInternalServerError, "internal", MsgRequestFailed
	}
}
