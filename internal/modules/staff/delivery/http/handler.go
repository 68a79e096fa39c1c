package handler

import (
	"net/http"

	"collegease.app/server/internal/modules/staff/service"
	"collegease.app/server/pkg/response"
	"github.com/gin-gonic/gin"
)

type StaffHandler struct {
	service service.StaffRosterService
}

func NewStaffHandler(service service.StaffRosterService) *StaffHandler {
	return &StaffHandler{service: service}
}

func (h *StaffHandler) ListStudents(c *gin.Context) {
	students, err := h.service.ListStudents(c.Request.Context(), c.Query("search"), c.Query("batch"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": students, "total": len(students)})
}

func (h *StaffHandler) BatchOptions(c *gin.Context) {
	batches, err := h.service.BatchOptions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batches})
}

func (h *StaffHandler) SearchStudents(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	students, err := h.service.SearchStudents(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": students, "total": len(students)})
}
