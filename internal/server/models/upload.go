package models

// UploadTarget is a presigned URL the client PUTs a file to, and the storage
// key the file will live under.
type UploadTarget struct {
	Key string
	URL string
}
