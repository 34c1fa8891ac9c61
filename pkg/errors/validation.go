package errors

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Limits on values that end up in file names and URLs.
const (
	maxIdentityPart = 256
	maxRelPath      = 500
)

// ValidateIdentityPart checks one component of a module identity (namespace,
// name or version). Components become archive names and download URLs, so
// they must be non-empty, printable and free of path syntax.
func ValidateIdentityPart(kind, value string) error {
	switch {
	case value == "":
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	case len(value) > maxIdentityPart:
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, maxIdentityPart)
	case strings.ContainsFunc(value, unicode.IsControl):
		return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
	case strings.Contains(value, ".."):
		return New(ErrCodeInvalidInput, "%s %q contains invalid characters: %q", kind, value, "..")
	}
	if i := strings.IndexAny(value, `/\`); i >= 0 {
		return New(ErrCodeInvalidInput, "%s %q contains invalid characters: %q", kind, value, value[i:i+1])
	}
	return nil
}

// ValidateImageName checks a screenshot file name. Image names are published
// as URLs in the registry.
func ValidateImageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPath, "image name cannot be empty")
	case strings.ContainsAny(name, `/\`):
		return New(ErrCodeInvalidPath, "image name cannot contain path separators: %q", name)
	case strings.ContainsFunc(name, unicode.IsSpace):
		return New(ErrCodeInvalidPath, "image %q contains spaces, rename it and try again", name)
	}
	return nil
}

// ValidatePath checks a slash-separated path relative to the update-site
// root, such as "0.9/plugin-1.0.0.zip".
func ValidatePath(p string) error {
	switch {
	case p == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(p) > maxRelPath:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxRelPath)
	case strings.ContainsFunc(p, unicode.IsControl):
		return New(ErrCodeInvalidPath, "path contains invalid control characters")
	case strings.Contains(p, `\`):
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	case strings.HasPrefix(p, "/"):
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	case strings.Contains(p, ".."), !filepath.IsLocal(filepath.FromSlash(p)):
		return New(ErrCodeInvalidPath, "path %q escapes the output directory", p)
	}
	return nil
}

// ValidateURL checks a site URL: http or https with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return nil
}

// pluginIDRegex matches registry ids, which are Maven artifact names.
var pluginIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidatePluginID checks a registry plugin id.
func ValidatePluginID(id string) error {
	if err := ValidateIdentityPart("plugin id", id); err != nil {
		return err
	}
	if !pluginIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid plugin id: %q", id)
	}
	return nil
}
