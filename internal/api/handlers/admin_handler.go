package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/leadintake/internal/services"
)

type AdminHandler struct {
	svc services.ReviewService
}

func NewAdminHandler(svc services.ReviewService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) ListApplications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.svc.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "applications": rows})
}

func (h *AdminHandler) GetApplication(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "application": a})
}

func (h *AdminHandler) UpdateApplication(c *gin.Context) {
	a, err := h.svc.Update(c.Request.Context(), c.Param("id"), services.ReviewInput{
		Status:     optionalForm(c, "status"),
		AssignedTo: optionalForm(c, "assignedTo"),
		Notes:      optionalForm(c, "notes"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "application": a})
}

func (h *AdminHandler) DownloadResume(c *gin.Context) {
	url, err := h.svc.ResumeURL(c.Request.Context(), c.Query("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, url)
}

func (h *AdminHandler) ListDeliveries(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	recs, err := h.svc.Deliveries(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deliveries": recs})
}

func (h *AdminHandler) GetDelivery(c *gin.Context) {
	rec, err := h.svc.Delivery(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "delivery": rec})
}
