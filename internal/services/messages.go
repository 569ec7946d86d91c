package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yoockh/leadintake/internal/delivery"
	"github.com/yoockh/leadintake/internal/models"
)

type resumePayload struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type quoteWebhook struct {
	Type string `json:"type"`
	models.QuoteRequest
}

type applicationWebhook struct {
	Type          string         `json:"type"`
	RequestID     string         `json:"requestId"`
	ApplicationID *string        `json:"applicationId"`
	ReceivedAt    time.Time      `json:"receivedAt"`
	RoleID        string         `json:"roleId"`
	RoleTitle     string         `json:"roleTitle"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone,omitempty"`
	Message       string         `json:"message,omitempty"`
	Source        string         `json:"source,omitempty"`
	Resume        *resumePayload `json:"resume"`
	Suspicious    bool           `json:"suspicious"`
	UserAgent     string         `json:"userAgent,omitempty"`
	IP            string         `json:"ip,omitempty"`
}

func quotePayload(q models.QuoteRequest) quoteWebhook {
	return quoteWebhook{Type: string(models.KindQuote), QuoteRequest: q}
}

func applicationPayload(a *models.JobApplication, suspicious, stored bool, link string) applicationWebhook {
	p := applicationWebhook{
		Type:       string(models.KindApplication),
		RequestID:  a.ID,
		ReceivedAt: a.ReceivedAt,
		RoleID:     a.RoleID,
		RoleTitle:  a.RoleTitle,
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Message:    a.Message,
		Source:     a.Source,
		Suspicious: suspicious,
		UserAgent:  a.UserAgent,
		IP:         a.IP,
	}
	if stored {
		id := a.ID
		p.ApplicationID = &id
	}
	if a.HasResume() {
		p.Resume = &resumePayload{
			Key:         *a.ResumeKey,
			Filename:    *a.ResumeFilename,
			ContentType: *a.ResumeContentType,
			Size:        *a.ResumeSize,
			DownloadURL: link,
		}
	}
	return p
}

func (s *intakeService) quoteMessage(q models.QuoteRequest) delivery.Message {
	var b strings.Builder
	writeField(&b, "Name", q.Name)
	writeField(&b, "Phone", q.Phone)
	writeField(&b, "Email", q.Email)
	writeField(&b, "Coverage", q.Coverage)
	writeField(&b, "ZIP", q.Zip)
	writeField(&b, "Notes", q.Notes)
	writeField(&b, "Source", q.Source)
	writeField(&b, "Request ID", q.RequestID)
	writeField(&b, "Received", q.ReceivedAt.Format(time.RFC1123))

	return delivery.Message{
		Kind:      string(models.KindQuote),
		RequestID: q.RequestID,
		Payload:   quotePayload(q),
		Subject:   s.subject("New quote request: " + q.Name),
		Text:      b.String(),
		ReplyTo:   replyTo(q.Email, s.cfg.ReplyToFallback),
	}
}

func (s *intakeService) applicationMessage(a *models.JobApplication, suspicious, stored bool) delivery.Message {
	link := s.resumeLink(a)

	var b strings.Builder
	writeField(&b, "Role", a.RoleTitle)
	writeField(&b, "Name", a.Name)
	writeField(&b, "Email", a.Email)
	writeField(&b, "Phone", a.Phone)
	writeField(&b, "Message", a.Message)
	writeField(&b, "Source", a.Source)
	if a.HasResume() {
		writeField(&b, "Resume", fmt.Sprintf("%s (%s, %d bytes)", *a.ResumeFilename, *a.ResumeContentType, *a.ResumeSize))
		writeField(&b, "Resume link", link)
	}
	if suspicious {
		writeField(&b, "Note", "submitted unusually fast; possibly automated")
	}
	if !stored {
		writeField(&b, "Storage", "not saved to the applicant inbox")
	}
	writeField(&b, "Request ID", a.ID)
	writeField(&b, "Received", a.ReceivedAt.Format(time.RFC1123))

	return delivery.Message{
		Kind:      string(models.KindApplication),
		RequestID: a.ID,
		Payload:   applicationPayload(a, suspicious, stored, link),
		Subject:   s.subject(fmt.Sprintf("New application: %s - %s", a.RoleTitle, a.Name)),
		Text:      b.String(),
		ReplyTo:   replyTo(a.Email, s.cfg.ReplyToFallback),
	}
}

// resumeLink points at the admin download redirect; empty without a base URL.
func (s *intakeService) resumeLink(a *models.JobApplication) string {
	if s.cfg.PublicBaseURL == "" || !a.HasResume() {
		return ""
	}
	return s.cfg.PublicBaseURL + "/api/admin/resume?id=" + url.QueryEscape(a.ID)
}

func (s *intakeService) subject(rest string) string {
	return strings.TrimSpace(s.cfg.SubjectPrefix + " " + rest)
}

func replyTo(email, fallback string) string {
	if strings.Contains(email, "@") {
		return email
	}
	return fallback
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
