package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/leadintake/internal/services"
)

type QuoteHandler struct {
	svc services.IntakeService
}

func NewQuoteHandler(svc services.IntakeService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

func (h *QuoteHandler) Submit(c *gin.Context) {
	res, err := h.svc.SubmitQuote(c.Request.Context(), services.QuoteInput{
		Company:   c.PostForm("company"),
		Name:      c.PostForm("name"),
		Phone:     c.PostForm("phone"),
		Email:     c.PostForm("email"),
		Coverage:  c.PostForm("coverage"),
		Zip:       c.PostForm("zip"),
		Notes:     c.PostForm("notes"),
		Source:    c.PostForm("source"),
		StartedAt: c.PostForm("startedAt"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "requestId": res.RequestID})
}
