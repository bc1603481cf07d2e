package resources

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/EpsilonIndustries21/sentiment/internal/infrastructure/config"
)

// stopwordsPackage is the corpus directory name inside the NLTK data layout
const stopwordsPackage = "stopwords"

// maxPackageSize bounds the downloaded archive
const maxPackageSize = 64 << 20

// Provisioner makes linguistic resources available on local storage
type Provisioner struct {
	dir        string
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

// NewProvisioner creates a provisioner rooted at cfg.Dir
func NewProvisioner(cfg *config.ResourcesConfig, log *zap.Logger) *Provisioner {
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Provisioner{
		dir: cfg.Dir,
		url: cfg.StopwordsURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// StopwordsDir returns the directory holding one file per language
func (p *Provisioner) StopwordsDir() string {
	return filepath.Join(p.dir, "corpora", stopwordsPackage)
}

// EnsureStopwords downloads the stop word corpus unless it is already present
func (p *Provisioner) EnsureStopwords(ctx context.Context) error {
	target := p.StopwordsDir()
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		p.log.Debug("Stop word corpus present", zap.String("path", target))
		return nil
	}
	if p.url == "" {
		return fmt.Errorf("stop word corpus missing at %s and no download URL configured", target)
	}

	p.log.Info("Downloading stop word corpus", zap.String("url", p.url), zap.String("path", target))

	archive, err := p.download(ctx)
	if err != nil {
		return err
	}
	if err := extractPackage(archive, filepath.Dir(target), stopwordsPackage); err != nil {
		return fmt.Errorf("failed to extract stop word corpus: %w", err)
	}

	p.log.Info("Stop word corpus installed", zap.String("path", target))
	return nil
}

func (p *Provisioner) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resource server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPackageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxPackageSize {
		return nil, fmt.Errorf("resource package exceeds %d bytes", maxPackageSize)
	}
	return body, nil
}

// extractPackage unpacks the files under pkg/ of a zip archive into
// parent/pkg. Files land in a temporary sibling directory first and are
// renamed into place, so a failed extraction leaves nothing behind.
func extractPackage(archive []byte, parent, pkg string) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	tmp, err := os.MkdirTemp(parent, "."+pkg+"-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	prefix := pkg + "/"
	extracted := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		name := strings.TrimPrefix(f.Name, prefix)
		if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
			continue
		}
		if err := extractFile(f, filepath.Join(tmp, name)); err != nil {
			return err
		}
		extracted++
	}
	if extracted == 0 {
		return fmt.Errorf("archive has no files under %s", prefix)
	}

	return os.Rename(tmp, filepath.Join(parent, pkg))
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, io.LimitReader(rc, maxPackageSize)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ErrUnknownList is returned for a stop word list that is not installed
var ErrUnknownList = errors.New("unknown stop word list")

// Stopwords reads the named list, one word per line
func (p *Provisioner) Stopwords(name string) ([]string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}

	f, err := os.Open(filepath.Join(p.StopwordsDir(), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
		}
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stopwords: read error: %w", err)
	}
	return words, nil
}
