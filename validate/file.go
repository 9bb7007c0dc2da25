package validate

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileResult is the outcome of a file upload content check
type FileResult struct {
	Valid  bool
	MIME   string // detected MIME type, or "unknown" when no signature matched
	Reason string // human-readable rejection reason, empty when valid
}

// MIMEUnknown is reported when the buffer matches no known signature
const MIMEUnknown = "unknown"

// minSniffLen is the shortest buffer that can carry a trustworthy
// signature; anything shorter is rejected outright.
const minSniffLen = 8

// DefaultAllowedUploadTypes returns the MIME types accepted for uploads
// when the caller passes none: the common raster and vector image types.
// PDF is detectable but not accepted by default.
func DefaultAllowedUploadTypes() []string {
	return []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/avif",
		"image/svg+xml",
	}
}

// extensionsByMIME maps each recognized type to its conventional filename
// extensions. The keys double as the set of signatures the validator
// recognizes at all; a detection outside this set is reported as unknown.
var extensionsByMIME = map[string][]string{
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
	"image/gif":       {".gif"},
	"image/webp":      {".webp"},
	"image/avif":      {".avif"},
	"image/svg+xml":   {".svg"},
	"application/pdf": {".pdf"},
}

// FileUpload decides whether buf is an acceptable upload. The filename
// extension and any client-supplied content type are never trusted; the
// leading bytes are matched against known signatures (JPEG, PNG, GIF,
// WebP, AVIF, SVG, PDF). A detected type outside allowed is rejected with
// a message naming the allowed set, and a filename extension that
// disagrees with the detected type is rejected even when the content
// itself is allowed, which defeats extension spoofing (PNG bytes named
// "file.exe"). A nil allowed falls back to DefaultAllowedUploadTypes.
func FileUpload(buf []byte, filename string, allowed []string) FileResult {
	if len(buf) < minSniffLen {
		return FileResult{Valid: false, MIME: MIMEUnknown, Reason: "file is too small to identify"}
	}

	detected := mimetype.Detect(buf)
	mime := detected.String()
	// mimetype appends parameters to some text types (e.g. charset)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	exts, known := extensionsByMIME[mime]
	if !known {
		return FileResult{Valid: false, MIME: MIMEUnknown, Reason: "file content does not match any supported type"}
	}

	if allowed == nil {
		allowed = DefaultAllowedUploadTypes()
	}
	if !slices.Contains(allowed, mime) {
		return FileResult{
			Valid:  false,
			MIME:   mime,
			Reason: fmt.Sprintf("file type %s is not allowed (allowed: %s)", mime, strings.Join(allowed, ", ")),
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(exts, ext) {
		return FileResult{
			Valid:  false,
			MIME:   mime,
			Reason: fmt.Sprintf("file extension does not match detected type %s", mime),
		}
	}

	return FileResult{Valid: true, MIME: mime}
}
