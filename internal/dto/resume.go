package dto

import (
	"time"
)

// ResumeMetadata is what is kept about an uploaded resume. The file body is never stored.
type ResumeMetadata struct {
	FileName   string    `json:"fileName" example:"anna-ivanova-cv.pdf"`    // Original file name
	FileSize   int64     `json:"fileSize" example:"182044"`                 // Size in bytes
	FileType   string    `json:"fileType" example:"application/pdf"`        // MIME type reported by the client
	UploadDate time.Time `json:"uploadDate" example:"2026-10-19T10:15:30Z"` // When the file was attached
}
