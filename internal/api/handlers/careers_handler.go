package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/leadintake/internal/careers"
	"github.com/yoockh/leadintake/internal/services"
	"github.com/yoockh/leadintake/internal/utils"
)

type CareersHandler struct {
	intake services.IntakeService
	upload services.UploadService
}

func NewCareersHandler(intake services.IntakeService, upload services.UploadService) *CareersHandler {
	return &CareersHandler{intake: intake, upload: upload}
}

func (h *CareersHandler) Roles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "roles": careers.Roles})
}

func (h *CareersHandler) Apply(c *gin.Context) {
	res, err := h.intake.SubmitApplication(c.Request.Context(), services.ApplicationInput{
		Company:           c.PostForm("company"),
		RoleID:            c.PostForm("roleId"),
		Name:              c.PostForm("name"),
		Email:             c.PostForm("email"),
		Phone:             c.PostForm("phone"),
		ResumeKey:         c.PostForm("resumeKey"),
		ResumeFilename:    c.PostForm("resumeFilename"),
		ResumeContentType: c.PostForm("resumeContentType"),
		ResumeSize:        c.PostForm("resumeSize"),
		Message:           c.PostForm("message"),
		Source:            c.PostForm("source"),
		StartedAt:         c.PostForm("startedAt"),
		UserAgent:         c.Request.UserAgent(),
		IP:                c.ClientIP(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"requestId":     res.RequestID,
		"applicationId": res.ApplicationID,
	})
}

type ResumeUploadRequest struct {
	Filename    string      `json:"filename"`
	ContentType string      `json:"contentType"`
	Size        json.Number `json:"size"`
}

func (h *CareersHandler) ResumeUpload(c *gin.Context) {
	const op = "CareersHandler.ResumeUpload"

	var req ResumeUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidUploadMetadata, op,
			"Please include the file name, type, and size.", err))
		return
	}

	// Size stays a float so fractional or absurd values reach validation.
	size, err := req.Size.Float64()
	if err != nil {
		size = 0
	}

	grant, err := h.upload.Authorize(c.Request.Context(), services.ResumeMeta{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        size,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"key":              grant.Key,
		"uploadUrl":        grant.UploadURL,
		"expiresInSeconds": grant.ExpiresInSeconds,
	})
}
