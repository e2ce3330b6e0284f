// Package registry is the default adapters.Publisher implementation: a
// REST client for the package registry. It tar.gz's the project directory,
// checksums it, PUTs it to the registry with a bearer token, and checks
// the status code.
package registry

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/membraneframework-labs/sebex/analysis"
	"github.com/membraneframework-labs/sebex/release"
)

// Client publishes a project's packaged source tree to the registry's
// "api/v1/projects/<name>/<version>" endpoint.
type Client struct {
	BaseURL string
	Token   string

	// ProjectDir resolves a project handle to its checked-out directory,
	// the tree that gets archived and uploaded.
	ProjectDir func(analysis.ProjectHandle) string

	httpClient *http.Client
}

// New builds a Client against baseURL (e.g. "https://hex.example.com"),
// authenticating uploads with token.
func New(baseURL, token string, projectDir func(analysis.ProjectHandle) string) *Client {
	return &Client{BaseURL: baseURL, Token: token, ProjectDir: projectDir, httpClient: http.DefaultClient}
}

// packageName derives the registry package name from a project handle:
// the repo name, or "repo/subpath" for a project nested in a monorepo.
func packageName(h analysis.ProjectHandle) string {
	if h.Subpath == "" {
		return h.Repo
	}
	return h.Repo + "/" + h.Subpath
}

// Publish archives proj's checked-out directory and uploads it as
// version proj.ToVersion. It is idempotent: re-uploading an already
// published version is treated by the registry as a conflict, which this
// method converts into a successful no-op rather than an error, matching
// the "detectable failure the adapter converts to success" contract.
func (c *Client) Publish(ctx context.Context, proj release.ProjectState) (bool, error) {
	name := packageName(proj.Project)
	version := proj.ToVersion.String()
	dir := c.ProjectDir(proj.Project)

	replace := analysis.IsTestPackageName(name)

	td, err := ioutil.TempDir("", "sebex-publish")
	if err != nil {
		return false, errors.Wrap(err, "registry: create temp dir")
	}
	defer os.RemoveAll(td)

	archivePath := filepath.Join(td, "project.tar.gz")
	f, err := os.Create(archivePath)
	if err != nil {
		return false, errors.Wrap(err, "registry: create archive")
	}

	h := sha256.New()
	if err := tarDir(dir, f, h); err != nil {
		f.Close()
		return false, errors.Wrapf(err, "registry: archive %s", dir)
	}
	if err := f.Close(); err != nil {
		return false, errors.Wrap(err, "registry: close archive")
	}

	content, err := os.Open(archivePath)
	if err != nil {
		return false, errors.Wrap(err, "registry: reopen archive")
	}
	defer content.Close()

	return c.upload(ctx, name, version, hex.EncodeToString(h.Sum(nil)), content, replace)
}

func (c *Client) upload(ctx context.Context, name, version, checksum string, content io.Reader, replace bool) (bool, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return false, errors.Wrap(err, "registry: parse base URL")
	}
	u.Path = path.Join(u.Path, "api/v1/projects", url.PathEscape(name), version)
	if replace {
		q := u.Query()
		q.Set("replace", "true")
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.String(), content)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "BEARER "+c.Token)
	req.Header.Set("X-Checksum-Sha256", checksum)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrapf(err, "registry: upload %s %s", name, version)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusConflict:
		// Already published: idempotent success.
		return true, nil
	default:
		body, _ := ioutil.ReadAll(resp.Body)
		return false, errors.Errorf("registry: upload %s %s: %s: %s", name, version, resp.Status, string(body))
	}
}

// tarDir walks src and writes a gzip-compressed tar of its contents to
// every writer (the archive file and, in parallel, the checksum hash).
func tarDir(src string, writers ...io.Writer) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("unable to tar %s: %v", src, err)
	}

	mw := io.MultiWriter(writers...)
	gzw := gzip.NewWriter(mw)
	defer gzw.Close()
	tw := tar.NewWriter(gzw)
	defer tw.Close()

	return filepath.Walk(src, func(file string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(fi, fi.Name())
		if err != nil {
			return err
		}
		header.Name = strings.TrimPrefix(strings.Replace(file, src, "", 1), string(filepath.Separator))
		if header.Name == "" {
			return nil
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}

		fh, err := os.Open(file)
		if err != nil {
			return err
		}
		defer fh.Close()
		_, err = io.Copy(tw, fh)
		return err
	})
}
