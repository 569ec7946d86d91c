package models

import (
	"time"

	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	StatusNew       ApplicationStatus = "new"
	StatusScreening ApplicationStatus = "screening"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusHired     ApplicationStatus = "hired"
	StatusRejected  ApplicationStatus = "rejected"
)

var ApplicationStatuses = []ApplicationStatus{
	StatusNew, StatusScreening, StatusInterview, StatusOffer, StatusHired, StatusRejected,
}

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	for _, st := range ApplicationStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

type JobApplication struct {
	ID       string            `gorm:"column:id;type:text;primaryKey" json:"id"`
	TenantID string            `gorm:"column:tenant_id;type:text;index" json:"tenantId"`
	Status   ApplicationStatus `gorm:"column:status;type:text" json:"status"`

	RoleID    string `gorm:"column:role_id;type:text" json:"roleId"`
	RoleTitle string `gorm:"column:role_title;type:text" json:"roleTitle"`
	Name      string `gorm:"column:name;type:text" json:"name"`
	Email     string `gorm:"column:email;type:text" json:"email"`
	Phone     string `gorm:"column:phone;type:text" json:"phone"`

	// all four are NULL unless a resume was uploaded
	ResumeKey         *string `gorm:"column:resume_key;type:text" json:"resumeKey"`
	ResumeFilename    *string `gorm:"column:resume_filename;type:text" json:"resumeFilename"`
	ResumeContentType *string `gorm:"column:resume_content_type;type:text" json:"resumeContentType"`
	ResumeSize        *int64  `gorm:"column:resume_size;type:bigint" json:"resumeSize"`

	Message   string `gorm:"column:message;type:text" json:"message"`
	Source    string `gorm:"column:source;type:text" json:"source"`
	UserAgent string `gorm:"column:user_agent;type:text" json:"userAgent"`
	IP        string `gorm:"column:ip;type:text" json:"ip"`

	ReceivedAt time.Time `gorm:"column:received_at;type:timestamptz" json:"receivedAt"`
	AssignedTo *string   `gorm:"column:assigned_to;type:text" json:"assignedTo"`
	Notes      *string   `gorm:"column:notes;type:text" json:"notes"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime:false" json:"updatedAt"`

	// fill time and heuristic flags
	Meta datatypes.JSONType[ApplicationMeta] `gorm:"column:meta;type:jsonb" json:"meta"`
}

func (JobApplication) TableName() string { return "job_applications" }

func (a *JobApplication) HasResume() bool {
	return a != nil && a.ResumeKey != nil && *a.ResumeKey != ""
}

// ApplicationMeta is the shape stored in JobApplication.Meta.
type ApplicationMeta struct {
	FillTimeMs int64 `json:"fillTimeMs"`
	Suspicious bool  `json:"suspicious"`
}

// ReviewUpdate carries admin edits. A nil field is left unchanged; a
// pointer to "" clears the column.
type ReviewUpdate struct {
	Status     *ApplicationStatus
	AssignedTo *string
	Notes      *string
}
