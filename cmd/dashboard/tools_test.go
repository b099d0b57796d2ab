package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# listings\nhttps://example.test/a\n\n  https://example.test/b  \n#https://example.test/skip\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	urls, err := loadURLsFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://example.test/a", "https://example.test/b"}
	if strings.Join(urls, ",") != strings.Join(want, ",") {
		t.Errorf("urls = %q, want %q", urls, want)
	}

	if _, err := loadURLsFromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing file should fail")
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "none.yaml"))
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSyncCommand(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/queue/sync" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 5, "errors": 0, "not_available": 2}`))
	}))
	defer upstream.Close()
	t.Setenv("API_URL", upstream.URL)

	out, err := runCLI(t, "sync")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "5 listings have been updated (0 errors, 2 not available)") {
		t.Errorf("output = %q", out)
	}
}

func TestUploadCommand(t *testing.T) {
	var uploads int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/upload" {
			http.NotFound(w, r)
			return
		}
		uploads++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer upstream.Close()
	t.Setenv("API_URL", upstream.URL)

	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
	}{
		{"text file", "urls.txt", "https://example.test/a", true},
		{"json name with invalid body", "urls.json", "https://example.test/a", true},
		{"valid json", "urls.json", `["https://example.test/a"]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := uploads
			path := filepath.Join(t.TempDir(), tt.file)
			os.WriteFile(path, []byte(tt.content), 0o644)

			out, err := runCLI(t, "upload", path)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "JSON") {
					t.Errorf("err = %v", err)
				}
				if uploads != before {
					t.Error("rejected file reached the API")
				}
				return
			}
			if err != nil || !strings.Contains(out, "URLs uploaded successfully") || uploads != before+1 {
				t.Errorf("out = %q, err = %v, uploads = %d", out, err, uploads)
			}
		})
	}
}
