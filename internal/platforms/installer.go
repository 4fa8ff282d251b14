package platforms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"

	pioerrors "github.com/dorukarda/platformio/internal/errors"
)

// DefaultRegistryURL is the platform registry serving platform manifests.
const DefaultRegistryURL = "https://dl.platformio.org/platforms"

// maxManifestSize bounds a downloaded platform manifest.
const maxManifestSize = 1 << 20

// HTTPInstaller fetches platform manifests from the registry and unpacks
// them under the platforms directory. Transient download failures are
// retried with exponential backoff.
type HTTPInstaller struct {
	baseURL string
	dest    string
	client  *http.Client
	tries   uint
}

// InstallerOption configures an HTTPInstaller.
type InstallerOption func(*HTTPInstaller)

// WithRegistryURL overrides the registry base URL.
func WithRegistryURL(url string) InstallerOption {
	return func(i *HTTPInstaller) { i.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) InstallerOption {
	return func(i *HTTPInstaller) { i.client = c }
}

// WithMaxTries overrides the per-platform download attempt limit.
func WithMaxTries(n uint) InstallerOption {
	return func(i *HTTPInstaller) { i.tries = n }
}

// NewHTTPInstaller creates an installer writing into dest (the platforms
// directory of the pio home).
func NewHTTPInstaller(dest string, opts ...InstallerOption) *HTTPInstaller {
	inst := &HTTPInstaller{
		baseURL: DefaultRegistryURL,
		dest:    dest,
		client:  &http.Client{Timeout: 60 * time.Second},
		tries:   4,
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// Install downloads and unpacks each named platform. The first failure
// aborts; platforms already unpacked in this call stay installed.
func (i *HTTPInstaller) Install(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := i.installOne(ctx, name); err != nil {
			return pioerrors.PlatformInstallError(name, err)
		}
	}
	return nil
}

func (i *HTTPInstaller) installOne(ctx context.Context, name string) error {
	manifest, err := backoff.Retry(ctx, func() ([]byte, error) {
		return i.fetchManifest(ctx, name)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(i.tries),
	)
	if err != nil {
		return err
	}

	dir := filepath.Join(i.dest, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// The manifest is written last: its presence marks a completed install.
	return os.WriteFile(filepath.Join(dir, ManifestName), manifest, 0o644)
}

// fetchManifest downloads one platform manifest. A 404 means the platform
// does not exist in the registry and is not retried.
func (i *HTTPInstaller) fetchManifest(ctx context.Context, name string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s", i.baseURL, name, ManifestName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(fmt.Errorf("platform %q not found in registry", name))
	default:
		return nil, fmt.Errorf("registry returned %s for %s", resp.Status, url)
	}
}
