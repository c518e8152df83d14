package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUploadSuccess(t *testing.T) {
	var gotField, gotFilename string
	var gotSize int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "no file field", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotField = "file"
		gotFilename = header.Filename
		buf := make([]byte, 64)
		n, _ := file.Read(buf)
		gotSize = n
		_ = json.NewEncoder(w).Encode(UploadResult{URL: "https://cdn.example/v1.m4a", Duration: 3.5})
	}))
	defer srv.Close()

	u, err := NewUploader(srv.URL, "tok")
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	res, err := u.Upload(context.Background(), []byte("audio-bytes"), "voice-note.m4a")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.URL != "https://cdn.example/v1.m4a" || res.Duration != 3.5 {
		t.Fatalf("result = %+v", res)
	}
	if gotField != "file" || gotFilename != "voice-note.m4a" || gotSize != len("audio-bytes") {
		t.Fatalf("server saw field=%q filename=%q size=%d", gotField, gotFilename, gotSize)
	}
}

func TestUploadAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte(`{"error":"too_large","message":"audio exceeds limit"}`))
	}))
	defer srv.Close()

	u, _ := NewUploader(srv.URL, "")
	_, err := u.Upload(context.Background(), []byte("x"), "v.m4a")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusRequestEntityTooLarge || apiErr.Code != "too_large" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestUploadRejectsOversizedPayload(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	u, _ := NewUploader(srv.URL, "")
	if _, err := u.Upload(context.Background(), make([]byte, MaxUploadSize+1), "v.m4a"); err == nil {
		t.Fatal("oversized payload accepted")
	}
	if called {
		t.Fatal("oversized payload reached the server")
	}
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	u, _ := NewUploader("http://localhost:1", "")
	if _, err := u.Upload(context.Background(), nil, "v.m4a"); err == nil {
		t.Fatal("empty payload accepted")
	}
}

func TestUploadMissingURLInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"duration": 3}`))
	}))
	defer srv.Close()

	u, _ := NewUploader(srv.URL, "")
	if _, err := u.Upload(context.Background(), []byte("x"), "v.m4a"); err == nil {
		t.Fatal("response without url accepted")
	}
}

func TestNewUploaderRejectsEmptyEndpoint(t *testing.T) {
	if _, err := NewUploader("   ", ""); err == nil {
		t.Fatal("empty endpoint accepted")
	}
}
