package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/logicossoftware/go-docxedit"
)

const (
	uploadField = "file"

	// multipartOverhead bounds the bytes a request may spend on multipart headers
	// and form fields on top of the upload itself.
	multipartOverhead = 64 << 10
)

var (
	errNoFilePart     = errors.New("no file part")
	errNoSelectedFile = errors.New("no selected file")
	errUploadTooLarge = errors.New("upload too large")
)

// handleUpload decodes an uploaded package and answers with its legacy block list.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize+multipartOverhead)

	name, data, err := s.readUpload(r)
	switch {
	case errors.Is(err, errNoFilePart):
		http.Error(w, "No file part", http.StatusBadRequest)
		return
	case errors.Is(err, errNoSelectedFile):
		http.Error(w, "No selected file", http.StatusBadRequest)
		return
	case err != nil:
		s.writeError(w, r, err)
		return
	}

	key, err := s.store.Save(name, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.remove(key)

	f, err := s.store.Open(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	doc, err := docxedit.Decode(f, docxedit.WithReadLimits(s.limits))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := docxedit.MarshalLegacy(doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.
		WithField("file", name).
		WithField("blocks", len(doc.Blocks)).
		Info("Document decoded")

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

// readUpload returns the file name and contents of the "file" part.
func (s *Server) readUpload(r *http.Request) (string, []byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, errNoFilePart
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, errNoFilePart
		}
		if err != nil {
			return "", nil, fmt.Errorf("reading upload: %w", err)
		}

		if part.FormName() != uploadField {
			_ = part.Close()
			continue
		}

		name := part.FileName()
		if name == "" {
			return "", nil, errNoSelectedFile
		}

		data, err := io.ReadAll(io.LimitReader(part, s.cfg.MaxUploadSize+1))
		_ = part.Close()
		if err != nil {
			return "", nil, fmt.Errorf("reading upload: %w", err)
		}
		if int64(len(data)) > s.cfg.MaxUploadSize {
			return "", nil, errUploadTooLarge
		}

		return name, data, nil
	}
}

type downloadRequest struct {
	Content json.RawMessage `json:"content"`
}

// handleDownload encodes a legacy block list and streams the package back as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)

	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.writeError(w, r, err)
			return
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Content) == 0 {
		http.Error(w, "missing content", http.StatusBadRequest)
		return
	}

	doc, err := docxedit.UnmarshalLegacy(req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := docxedit.Encode(&buf, doc, docxedit.WithWriteLimits(s.limits)); err != nil {
		s.writeError(w, r, err)
		return
	}

	key, err := s.store.Save(s.cfg.DownloadName, buf.Bytes())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.remove(key)

	f, err := s.store.Open(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	s.logger.
		WithField("blocks", len(doc.Blocks)).
		WithField("bytes", buf.Len()).
		Info("Document encoded")

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.cfg.DownloadName}))
	_, _ = io.Copy(w, f)
}

func (s *Server) remove(key string) {
	if err := s.store.Remove(key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warning("Couldn't remove scratch file")
	}
}
