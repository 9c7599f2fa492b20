package backend

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/h44z/sms-portal/internal"
	"github.com/h44z/sms-portal/internal/domain"
)

const (
	minNumberLength = 5
	maxNumberLength = 15
)

// UploadedFile is a recipient file received by the upload endpoint.
type UploadedFile struct {
	Name        string
	Description string
	FileName    string
	Size        int64
	Content     io.Reader
}

type FileService struct {
	files FileDatabaseRepo

	now func() time.Time
}

func NewFileService(files FileDatabaseRepo) *FileService {
	return &FileService{
		files: files,
		now:   time.Now,
	}
}

// Upload parses the recipient numbers of the file and stores it. Duplicate numbers are dropped.
func (s FileService) Upload(ctx context.Context, upload UploadedFile) (string, error) {
	if upload.Size > domain.MaxFileSize {
		return "", domain.NewValidationError("File",
			fmt.Sprintf("File must not be larger than %d bytes.", domain.MaxFileSize))
	}

	fileType := domain.FileType(strings.ToLower(filepath.Ext(upload.FileName)))
	if fileType != domain.FileTypeCSV && fileType != domain.FileTypeTXT {
		return "", domain.NewValidationError("File", "Only csv and txt files are supported.")
	}

	raw, err := io.ReadAll(io.LimitReader(upload.Content, domain.MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(raw)) > domain.MaxFileSize {
		return "", domain.NewValidationError("File",
			fmt.Sprintf("File must not be larger than %d bytes.", domain.MaxFileSize))
	}

	numbers, err := ParseNumbers(raw)
	if err != nil {
		return "", domain.NewValidationError("File", err.Error())
	}

	name := upload.Name
	if name == "" {
		name = upload.FileName
	}
	file := &domain.NumFile{
		ID:          uuid.NewString(),
		Name:        name,
		Description: upload.Description,
		Username:    domain.GetUserInfo(ctx).Username,
		SubmittedAt: s.now().Unix(),
		Type:        fileType,
		Rows:        len(numbers),
		Numbers:     numbers,
	}
	if err := s.files.SaveFile(ctx, file); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return file.ID, nil
}

func (s FileService) List(ctx context.Context) ([]domain.NumFile, error) {
	files, err := s.files.GetFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load files: %w", err)
	}
	if files == nil {
		files = []domain.NumFile{}
	}

	return files, nil
}

func (s FileService) Delete(ctx context.Context, id string) error {
	err := s.files.DeleteFile(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fail(domain.ErrNotFound, "Couldn't find file %s.", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", id, err)
	}

	return nil
}

// ParseNumbers reads the numbers of a recipient file. Numbers are separated by commas or line breaks.
// Every number must have between 5 and 15 characters. The order of first appearance is kept.
func ParseNumbers(raw []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var numbers []string
	entry := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("File is not a valid list of numbers: %w.", err)
		}

		for _, field := range record {
			num := strings.TrimSpace(field)
			if num == "" {
				continue
			}
			entry++
			if len(num) < minNumberLength || len(num) > maxNumberLength {
				return nil, fmt.Errorf("Entry %d is invalid, numbers must have between %d and %d characters.",
					entry, minNumberLength, maxNumberLength)
			}
			numbers = append(numbers, num)
		}
	}

	if len(numbers) == 0 {
		return nil, errors.New("File doesn't contain any numbers.")
	}
	return internal.UniqueStringSlice(numbers), nil
}
