package elementbuilder

import (
	"net/url"
	"path/filepath"
	"strings"
)

// remoteScheme reports whether uri names a non-file URL scheme. Single
// letter schemes are Windows drive letters.
func remoteScheme(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil || len(u.Scheme) < 2 {
		return false
	}
	return !strings.EqualFold(u.Scheme, "file")
}

// localPath returns the filesystem path of uri, if it names one.
func localPath(uri string) (string, bool) {
	if uri == "" || remoteScheme(uri) {
		return "", false
	}
	if u, err := url.Parse(uri); err == nil && strings.EqualFold(u.Scheme, "file") {
		return filepath.FromSlash(u.Path), true
	}
	return uri, true
}

// resolveLocator joins relative file locators onto base.
func resolveLocator(uri, base string) string {
	uri = strings.TrimSpace(uri)
	if uri == "" || base == "" || remoteScheme(uri) {
		return uri
	}
	if strings.HasPrefix(strings.ToLower(uri), "file:") || filepath.IsAbs(uri) {
		return uri
	}
	return filepath.Join(base, filepath.FromSlash(uri))
}

// relativizeLocator rewrites absolute file locators below base as relative
// slash paths; anything else is returned unchanged.
func relativizeLocator(uri, base string) string {
	if uri == "" || base == "" || remoteScheme(uri) || !filepath.IsAbs(uri) {
		return uri
	}
	rel, err := filepath.Rel(base, uri)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return uri
	}
	return filepath.ToSlash(rel)
}
