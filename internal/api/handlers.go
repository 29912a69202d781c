// Package api is the thin HTTP surface over the assessment pipeline.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"hskk-assessor/internal/assessment"
	apperrors "hskk-assessor/internal/common/errors"
	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/criteria"
)

// Assessor is the pipeline surface the handlers need.
type Assessor interface {
	Assess(ctx context.Context, req assessment.Request) (*assessment.AssessmentResult, error)
	DescribeTask(taskID string) (criteria.TaskPlan, float64, error)
	TaskIDs() []string
}

type Handler struct {
	assessor         Assessor
	supportedFormats []string
	maxUploadBytes   int64
	log              logger.Logger
}

func NewHandler(assessor Assessor, supportedFormats []string, maxUploadBytes int64, log logger.Logger) *Handler {
	return &Handler{
		assessor:         assessor,
		supportedFormats: supportedFormats,
		maxUploadBytes:   maxUploadBytes,
		log:              log,
	}
}

type errorResponse struct {
	Success      bool   `json:"success"`
	Code         string `json:"code"`
	ErrorMessage string `json:"error_message"`
}

// CreateAssessment handles POST /api/v1/assessments.
func (h *Handler) CreateAssessment(c *gin.Context) {
	taskID := c.PostForm("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:         string(apperrors.ErrCodeValidationFailed),
			ErrorMessage: "task_id is required",
		})
		return
	}

	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:         string(apperrors.ErrCodeValidationFailed),
			ErrorMessage: "audio_file is required",
		})
		return
	}

	if !h.formatSupported(fileHeader.Filename) {
		stdErr := apperrors.NewAudioUnsupportedError(fileHeader.Filename, h.supportedFormats)
		c.JSON(apperrors.HTTPStatus(stdErr.Code), errorResponse{
			Code:         string(stdErr.Code),
			ErrorMessage: stdErr.Message,
		})
		return
	}

	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		c.JSON(apperrors.HTTPStatus(apperrors.ErrCodeAudioTooLarge), errorResponse{
			Code:         string(apperrors.ErrCodeAudioTooLarge),
			ErrorMessage: fmt.Sprintf("audio_file exceeds the %d byte limit", h.maxUploadBytes),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:         string(apperrors.ErrCodeValidationFailed),
			ErrorMessage: "failed to read audio_file",
		})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:         string(apperrors.ErrCodeValidationFailed),
			ErrorMessage: "failed to read audio_file",
		})
		return
	}

	req := assessment.Request{
		Audio:               audio,
		Filename:            fileHeader.Filename,
		TaskID:              taskID,
		ReferenceText:       c.PostForm("reference_text"),
		IncludeWordAnalysis: c.PostForm("include_word_analysis") == "true",
	}

	result, err := h.assessor.Assess(c.Request.Context(), req)
	if err != nil {
		code := apperrors.CodeOf(err)
		switch code {
		case apperrors.ErrCodeTaskNotFound, apperrors.ErrCodeAudioUnsupported:
			c.JSON(apperrors.HTTPStatus(code), errorResponse{
				Code:         string(code),
				ErrorMessage: apperrors.Normalize(err).Message,
			})
			return
		default:
			// Pipeline failures still carry a structured result body.
			c.JSON(http.StatusOK, result)
			return
		}
	}

	c.JSON(http.StatusOK, result)
}

// DescribeTask handles GET /api/v1/tasks/:task_id.
func (h *Handler) DescribeTask(c *gin.Context) {
	plan, maxTotal, err := h.assessor.DescribeTask(c.Param("task_id"))
	if err != nil {
		code := apperrors.CodeOf(err)
		c.JSON(apperrors.HTTPStatus(code), errorResponse{
			Code:         string(code),
			ErrorMessage: apperrors.Normalize(err).Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":      plan,
		"max_total": maxTotal,
	})
}

// ListTasks handles GET /api/v1/tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task_ids": h.assessor.TaskIDs()})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) formatSupported(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, f := range h.supportedFormats {
		if ext == f {
			return true
		}
	}
	return false
}
