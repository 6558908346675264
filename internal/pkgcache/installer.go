package pkgcache

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/uuid"

	"github.com/dapp-labs/dapp-cli/internal/platform"
	"github.com/dapp-labs/dapp-cli/internal/registry"
)

// MetadataSource looks up registry metadata for a package.
type MetadataSource interface {
	Metadata(ctx context.Context, name string) (*registry.Packument, error)
}

// TarballInstaller downloads a version's tarball from the registry and unpacks
// it into the destination. Files are extracted into a staging directory next
// to the destination and renamed into place only after the download and
// checksum succeeded, so a failed install never leaves a half-populated
// package directory behind.
type TarballInstaller struct {
	source     MetadataSource
	httpClient *http.Client
}

// InstallerOption configures a TarballInstaller.
type InstallerOption func(*TarballInstaller)

// WithDownloadClient sets the HTTP client used for tarball downloads.
func WithDownloadClient(c *http.Client) InstallerOption {
	return func(i *TarballInstaller) {
		i.httpClient = c
	}
}

// NewTarballInstaller returns an installer that reads metadata from source.
func NewTarballInstaller(source MetadataSource, opts ...InstallerOption) *TarballInstaller {
	i := &TarballInstaller{
		source:     source,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install implements Installer. An existing destination is left untouched.
func (i *TarballInstaller) Install(ctx context.Context, req Request) error {
	if pathExists(req.Dest) {
		return nil
	}

	doc, err := i.source.Metadata(ctx, req.Name)
	if err != nil {
		return err
	}
	manifest, ok := doc.Versions[req.Version]
	if !ok {
		return fmt.Errorf("version %s of %s is not published", req.Version, req.Name)
	}
	if manifest.Dist.Tarball == "" {
		return fmt.Errorf("registry lists no tarball for %s@%s", req.Name, req.Version)
	}

	if err := os.MkdirAll(filepath.Dir(req.Dest), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	staging := req.Dest + ".tmp-" + uuid.NewString()
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	// Removing the staging dir is a no-op once it has been renamed.
	defer os.RemoveAll(staging)

	if err := i.download(ctx, manifest.Dist, staging); err != nil {
		return err
	}

	if err := os.Rename(staging, req.Dest); err != nil {
		// Another process may have finished the same version first.
		if pathExists(req.Dest) {
			return nil
		}
		return fmt.Errorf("finalizing %s: %w", req.Dest, err)
	}
	return nil
}

// download streams the tarball through the checksum and the extractor.
func (i *TarballInstaller) download(ctx context.Context, dist registry.Dist, destDir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dist.Tarball, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", "dapp-cli")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", dist.Tarball, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	h := sha1.New()
	body := io.TeeReader(resp.Body, h)

	if err := extractTarGz(body, destDir); err != nil {
		return err
	}
	// Drain trailing bytes so the digest covers the whole archive.
	if _, err := io.Copy(io.Discard, body); err != nil {
		return fmt.Errorf("reading download stream: %w", err)
	}

	if dist.Shasum != "" {
		actual := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(actual, dist.Shasum) {
			return fmt.Errorf("checksum mismatch: expected %s, got %s", dist.Shasum, actual)
		}
	}
	return nil
}

// extractTarGz unpacks a gzip-compressed tarball into destDir, dropping the
// leading path component ("package/" in registry tarballs). Entries that would
// land outside destDir, symlinks, and special files are skipped.
func extractTarGz(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		// Insecure names are confined by SecureJoin below.
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		rel := stripFirstComponent(hdr.Name)
		if rel == "" {
			continue
		}
		target, err := securejoin.SecureJoin(destDir, rel)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", hdr.Name, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", rel, err)
			}
		case tar.TypeReg:
			if err := writeEntry(tr, target, platform.ArchiveMode(hdr.Mode)); err != nil {
				return fmt.Errorf("extracting %s: %w", rel, err)
			}
		}
	}
	return nil
}

func writeEntry(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func stripFirstComponent(name string) string {
	name = path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "./"))
	if i := strings.Index(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return ""
}
