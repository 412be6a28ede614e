package mediadrive

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// DefaultImageExtensions are the extensions served through the image CDN.
var DefaultImageExtensions = []string{
	".tif",
	".tiff",
	".gif",
	".jpeg",
	".jpg",
	".jif",
	".jfif",
	".png",
	".bmp",
	".webp",
	".heif",
	".heic",
	".jp2",
	".j2k",
	".jpf",
	".jpx",
	".jpm",
	".mj2",
	".svg",
}

// Mapper converts between file descriptors, object keys and public URLs.
// The zero value maps every file to a key without a directory and never
// rewrites URLs to a CDN.
type Mapper struct {
	// DefaultPath is used as the directory when a file has no path.
	DefaultPath string
	// StorageBaseURL is the container URL of the disk.
	StorageBaseURL string
	// CDNBaseURL is the image CDN host. Empty disables the rewrite.
	CDNBaseURL string
	// ImageExtensions overrides DefaultImageExtensions when non-nil.
	ImageExtensions []string
}

// Key returns the object key for f: "{path or DefaultPath}/{hash}{ext}".
func (m Mapper) Key(f File) string {
	dir := f.Path
	if dir == "" {
		dir = m.DefaultPath
	}

	return strings.Join(segments(dir+"/"+f.Name()), "/")
}

// IsImage reports whether ext is served through the image CDN.
func (m Mapper) IsImage(ext string) bool {
	exts := m.ImageExtensions
	if exts == nil {
		exts = DefaultImageExtensions
	}

	for _, e := range exts {
		if e == ext {
			return true
		}
	}

	return false
}

// PublicURL returns the URL under which the object with the given key is served.
// Images are served from the CDN by their base name, everything else from storage.
func (m Mapper) PublicURL(key, ext string) string {
	if m.CDNBaseURL != "" && m.IsImage(ext) {
		return trimBase(m.CDNBaseURL) + "/" + url.PathEscape(path.Base(key))
	}

	return m.StorageURL(key)
}

// StorageURL returns the storage-native URL of the object with the given key.
func (m Mapper) StorageURL(key string) string {
	parts := segments(key)
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}

	return trimBase(m.StorageBaseURL) + "/" + strings.Join(parts, "/")
}

// RecoverKey returns the object key for a URL previously returned by PublicURL.
// CDN URLs carry no directory, so DefaultPath is assumed for them.
func (m Mapper) RecoverKey(u string) (string, error) {
	storage := trimBase(m.StorageBaseURL) + "/"
	cdn := trimBase(m.CDNBaseURL) + "/"

	var rest string
	switch {
	case m.CDNBaseURL != "" && strings.HasPrefix(u, cdn) &&
		(!strings.HasPrefix(u, storage) || len(cdn) > len(storage)):
		rest = m.DefaultPath + "/" + strings.TrimPrefix(u, cdn)
	case strings.HasPrefix(u, storage):
		rest = strings.TrimPrefix(u, storage)
	default:
		return "", UnrecognizedURLError{URL: u}
	}

	parts := segments(rest)
	if len(parts) == 0 {
		return "", UnrecognizedURLError{URL: u}
	}

	for i, p := range parts {
		unescaped, err := url.PathUnescape(p)
		if err != nil {
			return "", fmt.Errorf("unescape %q: %w", p, err)
		}
		parts[i] = unescaped
	}

	return strings.Join(parts, "/"), nil
}

// UnrecognizedURLError is returned when a URL was not issued by the Mapper.
type UnrecognizedURLError struct {
	URL string
}

func (err UnrecognizedURLError) Error() string {
	return fmt.Sprintf("url '%s' does not belong to the storage or the cdn", err.URL)
}

func segments(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func trimBase(base string) string {
	return strings.TrimRight(base, "/")
}
