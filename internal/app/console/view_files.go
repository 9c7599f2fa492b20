package console

import (
	"context"
	"fmt"
	"strconv"

	"github.com/h44z/sms-portal/internal/domain"
)

func (s *Shell) wireFilesView(ctx context.Context, p *Page) error {
	files := NewListView(p, "files", ignoreFilter(s.gw.FilterFiles), renderFiles)
	fileSelect := NewListView(p, "file-select", ignoreFilter(s.gw.FilterFiles), renderFileOptions)

	NewFormAction(p, "upload",
		func(values Values) (domain.FileUpload, error) {
			return domain.FileUpload{
				Path:        trimmed(values, "File"),
				Name:        trimmed(values, "Name"),
				Description: trimmed(values, "Description"),
			}, nil
		},
		func(ctx context.Context, upload domain.FileUpload) (string, error) {
			id, err := s.gw.UploadFile(ctx, upload)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("File uploaded with id %s.", id), nil
		},
		files.Refresher(noFilter),
		fileSelect.Refresher(noFilter),
	).Register()

	NewFormAction(p, "delete",
		func(values Values) (domain.FileAction, error) {
			return domain.FileAction{FileID: trimmed(values, "FileID")}, nil
		},
		func(ctx context.Context, action domain.FileAction) (string, error) {
			if err := s.gw.DeleteFile(ctx, action); err != nil {
				return "", err
			}
			return "File deleted.", nil
		},
		files.Refresher(noFilter),
		fileSelect.Refresher(noFilter),
	).Register()

	_ = files.Refresh(ctx, noFilter())
	_ = fileSelect.Refresh(ctx, noFilter())
	return nil
}

func renderFiles(files []domain.NumFile) Component {
	t := Table{
		Columns: []string{"ID", "Name", "Description", "Type", "Recipients", "Owner", "Submitted"},
		Empty:   "No files uploaded.",
	}
	for _, f := range files {
		t.Rows = append(t.Rows, []string{
			f.ID,
			f.Name,
			f.Description,
			string(f.Type),
			strconv.Itoa(f.Rows),
			f.Username,
			domain.FormatUnix(f.SubmittedAt),
		})
	}
	return t
}

func renderFileOptions(files []domain.NumFile) Component {
	opts := Options{}
	for _, f := range files {
		opts.Items = append(opts.Items, Option{
			Value: f.ID,
			Label: fmt.Sprintf("%s (%d recipients)", f.Name, f.Rows),
		})
	}
	return opts
}
