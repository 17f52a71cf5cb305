// Package storage resolves source references to local files and publishes
// finished documents to their destination.
//
// Supported references:
//   - absolute/relative filesystem paths and file://path
//   - http(s):// URLs (downloaded into the run's working directory)
//   - s3://bucket/key (AWS SDK v2, default credential chain)
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Kind classifies a reference.
type Kind int

const (
	Local Kind = iota
	HTTP
	S3
)

// KindOf returns the kind of ref.
func KindOf(ref string) Kind {
	switch {
	case strings.HasPrefix(ref, "s3://"):
		return S3
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		return HTTP
	}
	return Local
}

// LocalPath strips an optional file:// scheme.
func LocalPath(ref string) string { return strings.TrimPrefix(ref, "file://") }

// Storage fetches sources and publishes outputs. The S3 client is created on
// first use so local-only runs never load AWS config.
type Storage struct {
	HTTPClient *http.Client

	s3once sync.Once
	s3     *S3Client
	s3err  error
}

// New returns a Storage using http.DefaultClient.
func New() *Storage { return &Storage{HTTPClient: http.DefaultClient} }

func (s *Storage) s3Client(ctx context.Context) (*S3Client, error) {
	s.s3once.Do(func() { s.s3, s.s3err = NewS3Client(ctx) })
	return s.s3, s.s3err
}

// Fetch makes ref available as a local file. Remote sources are downloaded
// into dir; local sources are returned as-is.
func (s *Storage) Fetch(ctx context.Context, ref, dir string) (string, error) {
	switch KindOf(ref) {
	case S3:
		cli, err := s.s3Client(ctx)
		if err != nil {
			return "", err
		}
		dst, err := tempPDF(dir, "s3pdf-")
		if err != nil {
			return "", err
		}
		return dst, cli.Download(ctx, ref, dst)
	case HTTP:
		return s.downloadHTTP(ctx, ref, dir)
	}
	p := LocalPath(ref)
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return p, nil
}

func (s *Storage) downloadHTTP(ctx context.Context, url, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d fetching %s", resp.StatusCode, url)
	}
	dst, err := tempPDF(dir, "pdfdl-")
	if err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", err
	}
	log.Debug().Str("url", url).Str("file", filepath.Base(dst)).Msg("downloaded pdf")
	return dst, nil
}

func tempPDF(dir, prefix string) (string, error) {
	f, err := os.CreateTemp(dir, prefix+"*.pdf")
	if err != nil {
		return "", err
	}
	name := f.Name()
	return name, f.Close()
}

// Publish moves the finished document at local to dest. Local destinations
// are renamed into place, falling back to a copy across filesystems.
func (s *Storage) Publish(ctx context.Context, local, dest string) error {
	switch KindOf(dest) {
	case S3:
		cli, err := s.s3Client(ctx)
		if err != nil {
			return err
		}
		return cli.Upload(ctx, local, dest)
	case HTTP:
		return errors.New("http destinations are not supported")
	}
	dst := LocalPath(dest)
	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.Rename(local, dst); err == nil {
		return nil
	}
	return copyFile(local, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
