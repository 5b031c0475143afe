package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-docxedit"
	"github.com/logicossoftware/go-docxedit/internal/config"
	"github.com/logicossoftware/go-docxedit/internal/logging/test"
	"github.com/logicossoftware/go-docxedit/internal/storage"
)

const scratchDir = "/scratch"

func newTestServer(t *testing.T, cfg config.Server) (*Server, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	store, err := storage.New(fs, scratchDir)
	require.NoError(t, err)

	return New(cfg, docxedit.Limits{}, store, test.NewNullLogger()), fs
}

func assertScratchEmpty(t *testing.T, fs afero.Fs) {
	t.Helper()

	entries, err := afero.ReadDir(fs, scratchDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func sampleDOCX(t *testing.T) []byte {
	t.Helper()

	size := 12.0
	doc := &docxedit.Document{Blocks: []docxedit.Block{
		{Type: docxedit.BlockParagraph, Paragraph: &docxedit.Paragraph{
			Alignment: docxedit.AlignCenter,
			Runs:      []docxedit.Run{{Text: "Hello", Bold: true, FontSize: &size}},
		}},
		{Type: docxedit.BlockTable, Table: &docxedit.Table{Rows: [][]docxedit.Cell{{
			{Text: "A", Borders: docxedit.CellBorders{
				docxedit.EdgeTop: {Size: 4, Style: "single", Color: "FF0000"},
			}},
		}}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, docxedit.Encode(&buf, doc))

	return buf.Bytes()
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func serve(s *Server, method, target, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = new(bytes.Buffer)
	}

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, config.Server{})

	rec := serve(s, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUpload(t *testing.T) {
	s, fs := newTestServer(t, config.Server{})

	body, ct := multipartBody(t, "file", "report.docx", sampleDOCX(t))
	rec := serve(s, http.MethodPost, "/upload", ct, body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[
		{"type":"paragraph","text":["Hello"],"bold":[true],"italic":[false],"underline":[false],
		 "font_size":[12],"alignment":"center","is_bullet":false},
		{"type":"table","rows":[["A"]],"borders":[{"top":{"sz":"4","val":"single","color":"FF0000"}}]}
	]`, rec.Body.String())

	assertScratchEmpty(t, fs)
}

func TestUpload_NoFilePart(t *testing.T) {
	tests := map[string]struct {
		request func(t *testing.T) (*bytes.Buffer, string)
	}{
		"other field": {
			request: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "attachment", "report.docx", []byte("data"))
			},
		},
		"not multipart": {
			request: func(t *testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{}`), "application/json"
			},
		},
	}

	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			s, fs := newTestServer(t, config.Server{})

			body, ct := tc.request(t)
			rec := serve(s, http.MethodPost, "/upload", ct, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "No file part", strings.TrimSpace(rec.Body.String()))
			assertScratchEmpty(t, fs)
		})
	}
}

func TestUpload_NoSelectedFile(t *testing.T) {
	s, fs := newTestServer(t, config.Server{})

	body, ct := multipartBody(t, "file", "", nil)
	rec := serve(s, http.MethodPost, "/upload", ct, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No selected file", strings.TrimSpace(rec.Body.String()))
	assertScratchEmpty(t, fs)
}

func TestUpload_NotADocument(t *testing.T) {
	s, fs := newTestServer(t, config.Server{})

	body, ct := multipartBody(t, "file", "notes.txt", []byte("plain text"))
	rec := serve(s, http.MethodPost, "/upload", ct, body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assertScratchEmpty(t, fs)
}

func TestUpload_TooLarge(t *testing.T) {
	s, fs := newTestServer(t, config.Server{MaxUploadSize: 512})

	body, ct := multipartBody(t, "file", "big.docx", bytes.Repeat([]byte("x"), 1024))
	rec := serve(s, http.MethodPost, "/upload", ct, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assertScratchEmpty(t, fs)
}

func TestDownload(t *testing.T) {
	s, fs := newTestServer(t, config.Server{})

	body := bytes.NewBufferString(`{"content":[
		{"type":"paragraph","text":["Hi"],"bold":[false],"italic":[true],"underline":[false],
		 "font_size":[null],"alignment":"right","is_bullet":true},
		{"type":"table","rows":[["1","2"]],"borders":[{},{"left":{"sz":8,"val":"double","color":"auto"}}]}
	]}`)
	rec := serve(s, http.MethodPost, "/download", "application/json", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=edited.docx", rec.Header().Get("Content-Disposition"))

	doc, err := docxedit.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 2)

	p := doc.Blocks[0].Paragraph
	require.NotNil(t, p)
	assert.Equal(t, docxedit.AlignRight, p.Alignment)
	assert.True(t, p.IsBullet)
	require.Len(t, p.Runs, 1)
	assert.Equal(t, "Hi", p.Runs[0].Text)
	assert.True(t, p.Runs[0].Italic)
	assert.Nil(t, p.Runs[0].FontSize)

	tbl := doc.Blocks[1].Table
	require.NotNil(t, tbl)
	require.Len(t, tbl.Rows, 1)
	require.Len(t, tbl.Rows[0], 2)
	assert.Empty(t, tbl.Rows[0][0].Borders)
	assert.Equal(t, docxedit.BorderSpec{Size: 8, Style: "double", Color: "auto"}, tbl.Rows[0][1].Borders[docxedit.EdgeLeft])

	assertScratchEmpty(t, fs)
}

func TestDownload_CustomName(t *testing.T) {
	s, _ := newTestServer(t, config.Server{DownloadName: "résumé final.docx"})

	rec := serve(s, http.MethodPost, "/download", "application/json", bytes.NewBufferString(`{"content":[]}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment;")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "filename")
}

func TestDownload_Rejected(t *testing.T) {
	tests := map[string]struct {
		body   string
		status int
	}{
		"invalid json":     {body: `{`, status: http.StatusBadRequest},
		"missing content":  {body: `{}`, status: http.StatusBadRequest},
		"not a list":       {body: `{"content":{"type":"paragraph"}}`, status: http.StatusUnprocessableEntity},
		"length mismatch":  {body: `{"content":[{"type":"paragraph","text":["a","b"],"bold":[true],"italic":[],"underline":[],"font_size":[],"alignment":"left","is_bullet":false}]}`, status: http.StatusUnprocessableEntity},
		"unknown type":     {body: `{"content":[{"type":"image"}]}`, status: http.StatusUnprocessableEntity},
		"border shortfall": {body: `{"content":[{"type":"table","rows":[["a","b"]],"borders":[{}]}]}`, status: http.StatusUnprocessableEntity},
	}

	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			s, fs := newTestServer(t, config.Server{})

			rec := serve(s, http.MethodPost, "/download", "application/json", bytes.NewBufferString(tc.body))

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assertScratchEmpty(t, fs)
		})
	}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	s, fs := newTestServer(t, config.Server{})

	body, ct := multipartBody(t, "file", "in.docx", sampleDOCX(t))
	up := serve(s, http.MethodPost, "/upload", ct, body)
	require.Equal(t, http.StatusOK, up.Code)

	down := serve(s, http.MethodPost, "/download", "application/json",
		bytes.NewBufferString(`{"content":`+up.Body.String()+`}`))
	require.Equal(t, http.StatusOK, down.Code)

	body, ct = multipartBody(t, "file", "out.docx", down.Body.Bytes())
	again := serve(s, http.MethodPost, "/upload", ct, body)
	require.Equal(t, http.StatusOK, again.Code)

	assert.JSONEq(t, up.Body.String(), again.Body.String())
	assertScratchEmpty(t, fs)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, config.Server{})

	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/nope", "", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(s, http.MethodGet, "/upload", "", nil).Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t, config.Server{Listen: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, s.ListenAndServe(ctx))
}

func TestListenAndServe_InvalidAddress(t *testing.T) {
	s, _ := newTestServer(t, config.Server{Listen: "127.0.0.1:-1"})

	assert.Error(t, s.ListenAndServe(context.Background()))
}
