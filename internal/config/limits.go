package config

import "time"

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in a VARCHAR(255) and keep names readable.
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for uploaded file names.
	MaxFileNameLength = 255

	// MinChangeNotesLength is the minimum length of the mandatory change
	// notes on a review submission. Blank or near-blank notes defeat the
	// point of the review trail.
	MinChangeNotesLength = 3

	// DefaultMaxUploadBytes bounds a single uploaded file (50 MiB).
	DefaultMaxUploadBytes int64 = 50 << 20

	// DefaultMaxFilesPerRequest bounds the file count of one upload request.
	DefaultMaxFilesPerRequest = 10

	// DefaultRenderTimeout bounds the external rendering call; on expiry
	// the preview degrades to "unavailable" instead of hanging the request.
	DefaultRenderTimeout = 30 * time.Second
)
