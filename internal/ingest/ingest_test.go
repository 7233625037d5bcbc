package ingest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "resumatch/internal/errors"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mime     string
		want     Kind
		wantErr  bool
	}{
		{name: "pdf by mime", filename: "upload", mime: "application/pdf", want: KindPDF},
		{name: "docx by mime", filename: "x", mime: mimeDOCX, want: KindDOCX},
		{name: "html with charset", filename: "x", mime: "text/html; charset=utf-8", want: KindHTML},
		{name: "pdf by extension", filename: "resume.PDF", want: KindPDF},
		{name: "markdown", filename: "notes.md", want: KindText},
		{name: "htm", filename: "job.htm", want: KindHTML},
		{name: "octet stream falls back to extension", filename: "cv.docx", mime: "application/octet-stream", want: KindDOCX},
		{name: "unsupported", filename: "photo.png", mime: "image/png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectKind(tt.filename, tt.mime)
			if tt.wantErr {
				require.Error(t, err)
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperrors.ErrCodeUnsupportedDocument, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromBytesText(t *testing.T) {
	doc, err := FromBytes([]byte("  Senior Go engineer\n"), "job.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer", doc.Text)
	assert.Equal(t, KindText, doc.Kind)

	_, err = FromBytes([]byte("   \n\t"), "empty.txt", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extractable text")
}

func TestFromBytesHTML(t *testing.T) {
	page := `<html><head><style>body{}</style><script>var x = 1;</script></head>
<body><nav>Home | Jobs</nav>
<div class="job-description"><h1>Backend Engineer</h1><p>We use   Go and Kubernetes.</p><ul><li>5+ years</li></ul></div>
<footer>Copyright</footer></body></html>`

	doc, err := FromBytes([]byte(page), "posting.html", "")
	require.NoError(t, err)
	assert.Equal(t, KindHTML, doc.Kind)
	assert.Contains(t, doc.Text, "Backend Engineer")
	assert.Contains(t, doc.Text, "We use Go and Kubernetes.")
	assert.Contains(t, doc.Text, "5+ years")
	assert.NotContains(t, doc.Text, "var x")
	assert.NotContains(t, doc.Text, "Home | Jobs")
	assert.NotContains(t, doc.Text, "Copyright")
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFromBytesDOCX(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Go developer</w:t></w:r></w:p>`)

	doc, err := FromBytes(data, "cv.docx", "")
	require.NoError(t, err)
	assert.Equal(t, KindDOCX, doc.Kind)
	assert.Equal(t, "Jane Doe\nGo developer", doc.Text)
}

func TestFromBytesCorruptPDF(t *testing.T) {
	_, err := FromBytes([]byte("not a pdf"), "cv.pdf", "application/pdf")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidFormat, appErr.Code)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.md")
	require.NoError(t, os.WriteFile(path, []byte("# Go engineer\nRemote"), 0o600))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Go engineer\nRemote", doc.Text)

	_, err = ReadFile(filepath.Join(dir, "missing.txt"))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeFileNotFound, appErr.Code)

	err = ValidateInputFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "10.0 MB", FormatFileSize(MaxDocumentSize))
}
