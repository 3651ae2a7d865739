// Package apitest builds form submissions for handler tests.
package apitest

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Upload is a file part of a test form.
type Upload struct {
	Field    string
	Filename string
	Content  []byte
}

// NewMultipartRequest encodes fields and the optional upload as
// multipart/form-data.
func NewMultipartRequest(t *testing.T, method, target string, fields map[string][]string, upload *Upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				t.Fatalf("writing field %s: %v", key, err)
			}
		}
	}
	if upload != nil {
		part, err := mw.CreateFormFile(upload.Field, upload.Filename)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := part.Write(upload.Content); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
