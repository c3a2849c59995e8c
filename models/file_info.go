package models

// FileInfo A file written to the upload directory.
// Size and dimensions are only filled in for the original of a pair.
type FileInfo struct {
	Filename string
	Path     string
	FileSize *int64
	Width    *int
	Height   *int
}
