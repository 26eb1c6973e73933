package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const body = "iso,continent,location,date,total_cases\nISR,Asia,Israel,2020-09-01,100\n"

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "nested", "data.csv")
	f := NewFetcher(srv.URL)
	if !f.Fetch(context.Background(), dest) {
		t.Fatal("Expected download to succeed")
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != body {
		t.Errorf("Unexpected body %q", got)
	}
}

func TestFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data.csv")
	if NewFetcher(srv.URL).Fetch(context.Background(), dest) {
		t.Fatal("Expected download to fail")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("No file should be left behind")
	}
}

func TestFetchTruncatedKeepsExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(dest, []byte("good old data"), 0644); err != nil {
		t.Fatal(err)
	}

	if NewFetcher(srv.URL).Fetch(context.Background(), dest) {
		t.Fatal("Expected truncated download to fail")
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Earlier file was removed: %v", err)
	}
	if string(got) != "good old data" {
		t.Errorf("Earlier file was overwritten: %q", got)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".owid-*"))
	if len(leftovers) != 0 {
		t.Errorf("Temp files left behind: %v", leftovers)
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	if _, ok := Latest(dir); ok {
		t.Fatal("Expected no dataset in empty dir")
	}
	for _, name := range []string{"data_2020-09-30.csv", "data_2020-10-02.csv", "data_2020-10-01.csv", "notes.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	got, ok := Latest(dir)
	if !ok || filepath.Base(got) != "data_2020-10-02.csv" {
		t.Errorf("Expected data_2020-10-02.csv, got %s (%v)", got, ok)
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if NewFetcher(url).Fetch(context.Background(), filepath.Join(t.TempDir(), "data.csv")) {
		t.Fatal("Expected download to fail against a closed server")
	}
}

func TestEnsureKeepsExisting(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(dest, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	if !NewFetcher(srv.URL).Ensure(context.Background(), dest) {
		t.Fatal("Expected Ensure to succeed")
	}
	if hit {
		t.Error("Existing file should not be downloaded again")
	}
}
