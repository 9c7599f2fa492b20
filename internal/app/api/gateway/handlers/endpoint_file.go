package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/sms-portal/internal/app/api/core/request"
	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/app/api/gateway/backend"
	"github.com/h44z/sms-portal/internal/domain"
)

type FileService interface {
	Upload(ctx context.Context, upload backend.UploadedFile) (string, error)
	List(ctx context.Context) ([]domain.NumFile, error)
	Delete(ctx context.Context, id string) error
}

type FileEndpoint struct {
	authenticator AuthenticationHandler
	files         FileService
}

func NewFileEndpoint(authenticator AuthenticationHandler, files FileService) FileEndpoint {
	return FileEndpoint{
		authenticator: authenticator,
		files:         files,
	}
}

func (e FileEndpoint) GetName() string {
	return "FileEndpoint"
}

func (e FileEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.With(e.authenticator.LoggedIn(domain.PermStartCampaign)).HandleFunc("POST /file/upload", e.handleUploadPost())
	g.With(e.authenticator.LoggedIn(domain.PermListNumFiles)).HandleFunc("GET /file/filter", e.handleFilterGet())
	g.With(e.authenticator.LoggedIn(domain.PermDeleteNumFile)).HandleFunc("POST /file/delete", e.handleDeletePost())
}

// handleUploadPost accepts a recipient file sent as multipart field File.
func (e FileEndpoint) handleUploadPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, header, err := r.FormFile("File")
		if err != nil {
			respondError(w, domain.NewValidationError("File", "File is required."))
			return
		}
		defer f.Close()

		id, err := e.files.Upload(r.Context(), backend.UploadedFile{
			Name:        request.Param(r, "Name"),
			Description: request.Param(r, "Description"),
			FileName:    header.Filename,
			Size:        header.Size,
			Content:     f,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, domain.IdResponse{Id: id})
	}
}

func (e FileEndpoint) handleFilterGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := e.files.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, files)
	}
}

func (e FileEndpoint) handleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Param(r, "FileID")
		if id == "" {
			respondError(w, domain.NewValidationError("FileID", "FileID is required."))
			return
		}

		if err := e.files.Delete(r.Context(), id); err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, "File deleted.")
	}
}
