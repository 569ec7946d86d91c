package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yoockh/leadintake/internal/utils"
)

const (
	ResumeKeyPrefix   = "careers/resumes/"
	UploadURLTTL      = 5 * time.Minute
	ResumeDownloadTTL = 5 * time.Minute

	maxSanitizedFilename = 120
)

const (
	msgUploadMetadata   = "Please include the file name, type, and size."
	msgUnsupportedType  = "Please upload a PDF or Word document (.pdf, .doc, .docx)."
	msgUploadBackendOff = "Resume uploads are not available right now. Please submit your application without a file and we will follow up."
)

var allowedResumeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\w.\-()+ ]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// ResumeMeta is the client-reported description of an uploaded file.
type ResumeMeta struct {
	Filename    string
	ContentType string
	Size        float64
}

func normalizeContentType(ct string) string {
	return strings.ToLower(strings.TrimSpace(ct))
}

// parseSize returns NaN for anything that is not a number so validation
// reports it as invalid metadata.
func parseSize(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// validateResumeMeta is shared by upload authorization and application
// submission, which each call it on their own input.
func validateResumeMeta(op string, m ResumeMeta, maxBytes int64) (ResumeMeta, error) {
	m.Filename = strings.TrimSpace(m.Filename)
	m.ContentType = normalizeContentType(m.ContentType)

	if m.Filename == "" || m.ContentType == "" {
		return m, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidUploadMetadata, op, msgUploadMetadata, nil)
	}
	if _, ok := allowedResumeTypes[m.ContentType]; !ok {
		return m, utils.EK(utils.CodeInvalidArgument, utils.KindUnsupportedFileType, op, msgUnsupportedType, nil)
	}
	if math.IsNaN(m.Size) || math.IsInf(m.Size, 0) || m.Size <= 0 {
		return m, utils.EK(utils.CodeInvalidArgument, utils.KindInvalidUploadMetadata, op, msgUploadMetadata, nil)
	}
	// Partial bytes round up so the ceiling check never undercounts.
	m.Size = math.Ceil(m.Size)
	if m.Size > float64(maxBytes) {
		return m, utils.EK(utils.CodeInvalidArgument, utils.KindFileTooLarge, op,
			fmt.Sprintf("File is too large. Maximum size is %d MB.", maxBytes/(1<<20)), nil)
	}
	return m, nil
}

// SanitizeFilename keeps the base name and only word characters, dot,
// hyphen, parentheses, plus and single spaces.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))
	if len(name) > maxSanitizedFilename {
		name = strings.TrimSpace(name[:maxSanitizedFilename])
	}
	if name == "" || strings.Trim(name, ".") == "" {
		return "resume"
	}
	return name
}

func BuildResumeKey(now time.Time, id, filename string) string {
	return ResumeKeyPrefix + now.UTC().Format("2006-01-02") + "/" + id + "-" + SanitizeFilename(filename)
}

func validResumeKey(key string) bool {
	return strings.HasPrefix(key, ResumeKeyPrefix) &&
		len(key) > len(ResumeKeyPrefix) &&
		!strings.Contains(key, "..")
}
