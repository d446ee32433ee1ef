package handler

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"teamline/internal/domain/service"
	"teamline/pkg/errors"
	"teamline/pkg/logger"
	"teamline/pkg/response"
)

type FileHandler struct {
	fileService service.FileUploadService
	maxFileSize int64
}

func NewFileHandler(fileService service.FileUploadService, maxFileSize int64) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxFileSize: maxFileSize,
	}
}

// UploadFile handles POST /upload: one file per request, multipart field
// "file". Clients composing a message with several attachments issue one
// request per file, possibly concurrently.
func (h *FileHandler) UploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	if file.Size > h.maxFileSize {
		logger.Warn("upload: %s too large (%d bytes)", file.Filename, file.Size)
		return response.Error(c, errors.BadRequest(
			fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
	}

	fileType := file.Header.Get("Content-Type")
	if !isAllowedFileType(fileType) {
		logger.Warn("upload: %s has unsupported type %s", file.Filename, fileType)
		return response.Error(c, errors.BadRequest("File type not supported", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	result, err := h.fileService.UploadFile(c.Request().Context(), src, fileType, file.Filename)
	if err != nil {
		logger.Error("upload: storage error for %s: %v", file.Filename, err)
		return response.Error(c, errors.UploadFailed(file.Filename, err))
	}

	return response.Success(c, map[string]interface{}{
		"url":  result.URL,
		"name": file.Filename,
		"type": fileType,
		"size": result.Size,
	})
}

func isAllowedFileType(fileType string) bool {
	switch {
	case strings.HasPrefix(fileType, "image/"):
		return true
	case fileType == "application/pdf",
		fileType == "text/plain",
		fileType == "application/msword",
		fileType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		fileType == "application/vnd.ms-excel",
		fileType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return true
	}
	return false
}
