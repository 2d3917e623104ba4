package cache

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mapedit/internal/debug"

	"github.com/pkg/errors"
)

// Manager downloads and caches the Natural Earth basemap
type Manager struct {
	cacheDir string
	client   *http.Client
	files    []DataFile
	progress io.Writer
}

// DataFile represents a Natural Earth dataset to download
type DataFile struct {
	Name     string // Friendly name
	URL      string // Download URL
	Base     string // Base filename (without extension)
	Optional bool   // If true, failure to download won't stop the app
}

// NaturalEarthFiles are the 1:50m basemap layers
var NaturalEarthFiles = []DataFile{
	{
		Name:     "States/Provinces",
		URL:      "https://naciscdn.org/naturalearth/50m/cultural/ne_50m_admin_1_states_provinces.zip",
		Base:     "ne_50m_admin_1_states_provinces",
		Optional: true,
	},
	{
		Name:     "Rivers",
		URL:      "https://naciscdn.org/naturalearth/50m/physical/ne_50m_rivers_lake_centerlines.zip",
		Base:     "ne_50m_rivers_lake_centerlines",
		Optional: true,
	},
	{
		Name:     "Coastlines",
		URL:      "https://naciscdn.org/naturalearth/50m/physical/ne_50m_coastline.zip",
		Base:     "ne_50m_coastline",
		Optional: true,
	},
	{
		Name:     "Populated Places",
		URL:      "https://naciscdn.org/naturalearth/50m/cultural/ne_50m_populated_places.zip",
		Base:     "ne_50m_populated_places",
		Optional: true,
	},
}

// Option configures a Manager
type Option func(*Manager)

// WithHTTPClient replaces the download client
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.client = client
	}
}

// WithFiles replaces the dataset list
func WithFiles(files []DataFile) Option {
	return func(m *Manager) {
		m.files = files
	}
}

// WithProgress sets where download progress is printed
func WithProgress(w io.Writer) Option {
	return func(m *Manager) {
		m.progress = w
	}
}

// NewManager creates the cache directory and a manager for it
func NewManager(cacheDir string, opts ...Option) (*Manager, error) {
	if cacheDir == "" {
		return nil, errors.New("cache directory is required")
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}

	m := &Manager{
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 2 * time.Minute},
		files:    NaturalEarthFiles,
		progress: os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// EnsureData downloads any missing datasets.
// Optional files that fail to download are skipped with a warning.
func (m *Manager) EnsureData(ctx context.Context) error {
	for _, file := range m.files {
		if err := m.ensureFile(ctx, file); err != nil {
			if file.Optional {
				fmt.Fprintf(m.progress, "Warning: Skipping %s (optional): %v\n", file.Name, err)
				debug.Warn("skipping %s: %v", file.Name, err)
				continue
			}
			return errors.Wrapf(err, "failed to ensure %s", file.Name)
		}
	}
	return nil
}

// Missing lists the datasets not yet in the cache
func (m *Manager) Missing() []DataFile {
	var missing []DataFile
	for _, file := range m.files {
		if !m.Has(file) {
			missing = append(missing, file)
		}
	}
	return missing
}

// Has reports whether a dataset's shapefile is cached
func (m *Manager) Has(file DataFile) bool {
	_, err := os.Stat(m.GetDataPath(file.Base))
	return err == nil
}

// ensureFile checks if a data file exists, downloads if needed
func (m *Manager) ensureFile(ctx context.Context, file DataFile) error {
	if m.Has(file) {
		return nil
	}

	fmt.Fprintf(m.progress, "Downloading %s...\n", file.Name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", "mapedit/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to download")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("download failed with status: %s (URL: %s)", resp.Status, file.URL)
	}

	tmpFile, err := os.CreateTemp(m.cacheDir, "download_*.zip")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return errors.Wrap(err, "failed to save download")
	}
	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to save download")
	}

	if err := extractZip(tmpFile.Name(), m.cacheDir); err != nil {
		return errors.Wrap(err, "failed to extract")
	}

	if !m.Has(file) {
		return errors.Errorf("archive has no %s.shp", file.Base)
	}

	fmt.Fprintf(m.progress, "Downloaded and extracted %s\n", file.Name)
	debug.Log("cached %s from %s", file.Base, file.URL)
	return nil
}

// extractZip flattens every regular file in the archive into destDir
func extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := filepath.Base(f.Name)
		if f.FileInfo().IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		if err := extractFile(f, filepath.Join(destDir, name)); err != nil {
			return errors.Wrapf(err, "extracting %s", f.Name)
		}
	}

	return nil
}

func extractFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

// GetDataPath returns the cached shapefile path for a dataset base name
func (m *Manager) GetDataPath(base string) string {
	return filepath.Join(m.cacheDir, base+".shp")
}

// GetCacheDir returns the cache directory
func (m *Manager) GetCacheDir() string {
	return m.cacheDir
}
