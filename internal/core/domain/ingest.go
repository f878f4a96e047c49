package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// IngestRecord marks a local file as already uploaded.
// Records are never updated or deleted by normal operation.
type IngestRecord struct {
	// LocalPath is the exact path string the file was found at.
	LocalPath string

	// StorageKey is the object key the file was uploaded under.
	StorageKey string

	// UploadedAt is when the record was written.
	UploadedAt time.Time
}

// IngestFailure is a per-file upload error that did not stop the run.
type IngestFailure struct {
	Path  string
	Error string
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Uploaded counts files uploaded and recorded.
	Uploaded int

	// Skipped counts files already recorded.
	Skipped int

	// Failures lists files whose upload failed.
	Failures []IngestFailure
}

// Failed returns the number of failed uploads.
func (r *IngestReport) Failed() int {
	return len(r.Failures)
}

// MediaCategory groups ingested files under a key prefix.
type MediaCategory string

// Media categories.
const (
	MediaPDF   MediaCategory = "pdf"
	MediaImage MediaCategory = "images"
	MediaVideo MediaCategory = "videos"
	MediaAudio MediaCategory = "audio"
	MediaOther MediaCategory = "other"
)

var mediaExtensions = map[string]MediaCategory{
	".pdf":  MediaPDF,
	".png":  MediaImage,
	".jpg":  MediaImage,
	".jpeg": MediaImage,
	".tif":  MediaImage,
	".tiff": MediaImage,
	".webp": MediaImage,
	".mp4":  MediaVideo,
	".mov":  MediaVideo,
	".mkv":  MediaVideo,
	".avi":  MediaVideo,
	".mp3":  MediaAudio,
	".wav":  MediaAudio,
	".m4a":  MediaAudio,
	".flac": MediaAudio,
}

// CategoryFor returns the media category for a file name.
func CategoryFor(name string) MediaCategory {
	if c, ok := mediaExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return c
	}
	return MediaOther
}

// ContentTypeFor returns a MIME type for upload metadata.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
