package handler

import (
	"net/http"

	"collegease.app/server/internal/modules/student/service"
	"collegease.app/server/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StudentHandler struct {
	service service.StudentFileService
}

func NewStudentHandler(service service.StudentFileService) *StudentHandler {
	return &StudentHandler{service: service}
}

func (h *StudentHandler) ListFiles(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	files, err := h.service.ListOwnFiles(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": files})
}

func (h *StudentHandler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.service.Upload(c.Request.Context(), userID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *StudentHandler) DeleteFile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, fileID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}
