package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/leadintake/internal/utils"
)

const testMaxBytes = 8 << 20

func TestValidateResumeMetaAcceptsAllowList(t *testing.T) {
	for _, ct := range []string{
		"application/pdf",
		"  APPLICATION/PDF ",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	} {
		m, err := validateResumeMeta("op", ResumeMeta{Filename: " cv.pdf ", ContentType: ct, Size: 500000}, testMaxBytes)
		require.NoError(t, err, ct)
		assert.Equal(t, "cv.pdf", m.Filename)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(ct)), m.ContentType)
	}
}

func TestValidateResumeMetaRejections(t *testing.T) {
	cases := []struct {
		name string
		meta ResumeMeta
		kind utils.Kind
	}{
		{"missing filename", ResumeMeta{Filename: "  ", ContentType: "application/pdf", Size: 10}, utils.KindInvalidUploadMetadata},
		{"missing type", ResumeMeta{Filename: "cv.pdf", Size: 10}, utils.KindInvalidUploadMetadata},
		{"png", ResumeMeta{Filename: "cv.png", ContentType: "image/png", Size: 10}, utils.KindUnsupportedFileType},
		{"zero size", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: 0}, utils.KindInvalidUploadMetadata},
		{"negative size", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: -1}, utils.KindInvalidUploadMetadata},
		{"nan size", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: math.NaN()}, utils.KindInvalidUploadMetadata},
		{"inf size", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: math.Inf(1)}, utils.KindInvalidUploadMetadata},
		{"too large", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: testMaxBytes + 1}, utils.KindFileTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validateResumeMeta("op", tc.meta, testMaxBytes)
			require.Error(t, err)
			assert.Equal(t, tc.kind, utils.KindOf(err))
			assert.Equal(t, 400, utils.HTTPStatus(err))
		})
	}
}

func TestValidateResumeMetaSizeBoundary(t *testing.T) {
	_, err := validateResumeMeta("op", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: testMaxBytes}, testMaxBytes)
	assert.NoError(t, err)
}

func TestValidateResumeMetaRoundsFractionalSizeUp(t *testing.T) {
	m, err := validateResumeMeta("op", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: 1.5}, testMaxBytes)
	require.NoError(t, err)
	assert.Equal(t, float64(2), m.Size)

	m, err = validateResumeMeta("op", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: 0.2}, testMaxBytes)
	require.NoError(t, err)
	assert.Equal(t, float64(1), m.Size)

	_, err = validateResumeMeta("op", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: testMaxBytes + 0.1}, testMaxBytes)
	assert.Equal(t, utils.KindFileTooLarge, utils.KindOf(err))
}

func TestFileTooLargeMessageRoundsDownMiB(t *testing.T) {
	_, err := validateResumeMeta("op", ResumeMeta{Filename: "cv.pdf", ContentType: "application/pdf", Size: 20 << 20}, (5<<20)+(900<<10))
	var ae *utils.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "File is too large. Maximum size is 5 MB.", ae.Message)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"resume.pdf":                    "resume.pdf",
		"../../etc/passwd":              "passwd",
		`C:\Users\jane\My CV.docx`:      "My CV.docx",
		"Jane   Doe\t(2024) + final.pdf": "Jane Doe (2024) + final.pdf",
		"résumé<script>.pdf":            "rsumscript.pdf",
		"$$$":                           "resume",
		"..":                            "resume",
		"":                              "resume",
		"dir/":                          "resume",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}

	long := strings.Repeat("a", 300) + ".pdf"
	assert.Len(t, SanitizeFilename(long), maxSanitizedFilename)
}

func TestBuildResumeKey(t *testing.T) {
	now := time.Date(2024, 1, 1, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	key := BuildResumeKey(now, "abc", "My Resume.pdf")
	assert.Equal(t, "careers/resumes/2024-01-02/abc-My Resume.pdf", key)
}

func TestValidResumeKey(t *testing.T) {
	assert.True(t, validResumeKey("careers/resumes/2024-01-01/abc-resume.pdf"))
	assert.False(t, validResumeKey("careers/resumes/"))
	assert.False(t, validResumeKey("other/2024-01-01/abc-resume.pdf"))
	assert.False(t, validResumeKey("careers/resumes/../../secrets"))
}

func TestFillTimeMs(t *testing.T) {
	received := time.UnixMilli(1_700_000_010_000)

	assert.Equal(t, int64(-1), fillTimeMs("", received))
	assert.Equal(t, int64(-1), fillTimeMs("soon", received))
	assert.Equal(t, int64(-1), fillTimeMs("0", received))
	assert.Equal(t, int64(500), fillTimeMs("1700000009500", received))
	assert.Equal(t, int64(10_000), fillTimeMs(" 1700000000000 ", received))
	assert.Equal(t, int64(-1), fillTimeMs("1700000020000", received), "clock skew reads as missing")
	assert.Equal(t, int64(2000), fillTimeMs(received.Add(-2*time.Second).UTC().Format(time.RFC3339Nano), received))
}

func TestTooFast(t *testing.T) {
	assert.True(t, tooFast(0))
	assert.True(t, tooFast(1199))
	assert.False(t, tooFast(1200))
	assert.False(t, tooFast(-1))
}
