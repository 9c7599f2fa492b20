package domain

import "net/url"

// MaxFileSize is the largest recipient file the gateway accepts.
const MaxFileSize int64 = 5 * 1024 * 1024

type FileType string

const (
	FileTypeCSV FileType = ".csv"
	FileTypeTXT FileType = ".txt"
)

// NumFile is an uploaded recipient file that campaigns can be started from.
type NumFile struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	Username    string
	SubmittedAt int64
	Type        FileType
	Rows        int
	Numbers     []string `json:"-" gorm:"serializer:json"`
	Deleted     bool     `json:"-"`
}

// FileUpload is the payload of a recipient file upload. The file itself is sent as multipart field "File".
type FileUpload struct {
	Path        string `validate:"required,file"`
	Name        string `validate:"max=64"`
	Description string `validate:"max=255"`
}

func (u FileUpload) Values() url.Values {
	return url.Values{
		"Name":        {u.Name},
		"Description": {u.Description},
	}
}

type FileAction struct {
	FileID string `validate:"required"`
}

func (a FileAction) Values() url.Values {
	return url.Values{"FileID": {a.FileID}}
}
