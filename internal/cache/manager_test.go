package cache

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestEnsureDataDownloadsAndExtracts(t *testing.T) {
	archive := zipOf(t, map[string]string{
		"rivers/rivers.shp": "shp",
		"rivers/rivers.dbf": "dbf",
		"rivers/.DS_Store":  "junk",
	})

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(archive)
	}))
	defer srv.Close()

	dir := t.TempDir()
	files := []DataFile{{Name: "Rivers", URL: srv.URL + "/rivers.zip", Base: "rivers"}}
	m, err := NewManager(dir, WithFiles(files), WithProgress(io.Discard), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	require.Len(t, m.Missing(), 1)

	require.NoError(t, m.EnsureData(context.Background()))
	require.FileExists(t, filepath.Join(dir, "rivers.shp"))
	require.FileExists(t, filepath.Join(dir, "rivers.dbf"))
	require.NoFileExists(t, filepath.Join(dir, ".DS_Store"))
	require.Empty(t, m.Missing())

	// Cached files are not fetched again
	require.NoError(t, m.EnsureData(context.Background()))
	require.Equal(t, int32(1), hits.Load())

	leftovers, err := filepath.Glob(filepath.Join(dir, "download_*.zip"))
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestOptionalFailureIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var out bytes.Buffer
	m, err := NewManager(t.TempDir(),
		WithFiles([]DataFile{{Name: "Coast", URL: srv.URL, Base: "coast", Optional: true}}),
		WithProgress(&out))
	require.NoError(t, err)

	require.NoError(t, m.EnsureData(context.Background()))
	require.Contains(t, out.String(), "Skipping Coast")
}

func TestRequiredFailureIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipOf(t, map[string]string{"other.shp": "x"}))
	}))
	defer srv.Close()

	m, err := NewManager(t.TempDir(),
		WithFiles([]DataFile{{Name: "Places", URL: srv.URL, Base: "places"}}),
		WithProgress(io.Discard))
	require.NoError(t, err)

	err = m.EnsureData(context.Background())
	require.ErrorContains(t, err, "places.shp")
}

func TestEnsureDataHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	m, err := NewManager(t.TempDir(),
		WithFiles([]DataFile{{Name: "Slow", URL: srv.URL, Base: "slow"}}),
		WithProgress(io.Discard))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, m.EnsureData(ctx))
}

func TestNewManager(t *testing.T) {
	_, err := NewManager("")
	require.Error(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "data")
	m, err := NewManager(dir)
	require.NoError(t, err)
	require.Equal(t, dir, m.GetCacheDir())
	require.Equal(t, filepath.Join(dir, "x.shp"), m.GetDataPath("x"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
