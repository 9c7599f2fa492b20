package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/h44z/sms-portal/internal/domain"
)

const (
	PathAuth            = "/api/user/auth"
	PathUserInfo        = "/api/user/info"
	PathMessage         = "/api/message"
	PathMessageFilter   = "/api/message/filter"
	PathCampaign        = "/api/campaign"
	PathCampaignFilter  = "/api/campaign/filter"
	PathCampaignStop    = "/api/campaign/stop"
	PathCampaignRetry   = "/api/campaign/retry"
	PathCampaignReport  = "/api/campaign/report"
	PathFileUpload      = "/api/file/upload"
	PathFileFilter      = "/api/file/filter"
	PathFileDelete      = "/api/file/delete"
	PathUsers           = "/api/users"
	PathUsersAdd        = "/api/users/add"
	PathUsersEdit       = "/api/users/edit"
	PathUsersPermission = "/api/users/permissions"
	PathServicesConfig  = "/api/services/config"
	PathServicesStatus  = "/api/services/status"
)

// Authenticate exchanges the credentials for a session token.
func (c *Client) Authenticate(ctx context.Context, req domain.LoginRequest) (string, error) {
	var resp domain.LoginResponse
	err := c.Call(ctx, Request{
		Method:   http.MethodPost,
		Path:     PathAuth,
		Encoding: EncodingForm,
		Fields:   req.Values(),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &domain.ApiError{Endpoint: PathAuth, Status: http.StatusOK,
			Cause: fmt.Errorf("%w: empty token", domain.ErrInvalidData)}
	}
	return resp.Token, nil
}

func (c *Client) UserInfo(ctx context.Context) (*domain.UserInfo, error) {
	var info domain.UserInfo
	err := c.Call(ctx, Request{Path: PathUserInfo, Authenticated: true}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) SendMessage(ctx context.Context, req domain.MessageRequest) (string, error) {
	var resp domain.IdResponse
	err := c.Call(ctx, Request{
		Method:        http.MethodPost,
		Path:          PathMessage,
		Encoding:      EncodingForm,
		Fields:        req.Values(),
		Authenticated: true,
	}, &resp)
	return resp.Id, err
}

func (c *Client) FilterMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	var msgs []domain.Message
	err := c.Call(ctx, Request{
		Path:          PathMessageFilter,
		Fields:        filter.Values(),
		Authenticated: true,
	}, &msgs)
	return msgs, err
}

// ExportMessages writes the filtered messages as CSV to w.
func (c *Client) ExportMessages(ctx context.Context, filter domain.MessageFilter, w io.Writer) (int64, error) {
	fields := filter.Values()
	fields.Set("CSV", "true")
	return c.Stream(ctx, Request{
		Path:          PathMessageFilter,
		Fields:        fields,
		Authenticated: true,
	}, w)
}

func (c *Client) CreateCampaign(ctx context.Context, req domain.CampaignRequest) (string, error) {
	var resp domain.IdResponse
	err := c.Call(ctx, Request{
		Method:        http.MethodPost,
		Path:          PathCampaign,
		Encoding:      EncodingForm,
		Fields:        req.Values(),
		Authenticated: true,
	}, &resp)
	return resp.Id, err
}

func (c *Client) FilterCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := c.Call(ctx, Request{Path: PathCampaignFilter, Authenticated: true}, &campaigns)
	return campaigns, err
}

// StopCampaign stops all pending messages of the campaign and returns their count.
func (c *Client) StopCampaign(ctx context.Context, action domain.CampaignAction) (domain.CountResponse, error) {
	return c.campaignCount(ctx, PathCampaignStop, action)
}

// RetryCampaign re-queues all failed messages of the campaign and returns their count.
func (c *Client) RetryCampaign(ctx context.Context, action domain.CampaignAction) (domain.CountResponse, error) {
	return c.campaignCount(ctx, PathCampaignRetry, action)
}

func (c *Client) campaignCount(ctx context.Context, path string, action domain.CampaignAction) (domain.CountResponse, error) {
	var resp domain.CountResponse
	err := c.Call(ctx, Request{
		Method:        http.MethodPost,
		Path:          path,
		Encoding:      EncodingForm,
		Fields:        action.Values(),
		Authenticated: true,
	}, &resp)
	return resp, err
}

func (c *Client) CampaignReport(ctx context.Context, action domain.CampaignAction) (*domain.CampaignReport, error) {
	var report domain.CampaignReport
	err := c.Call(ctx, Request{
		Path:          PathCampaignReport,
		Fields:        action.Values(),
		Authenticated: true,
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// UploadFile sends the recipient file at upload.Path as multipart request.
func (c *Client) UploadFile(ctx context.Context, upload domain.FileUpload) (string, error) {
	f, err := os.Open(upload.Path)
	if err != nil {
		return "", domain.NewValidationError("File", fmt.Sprintf("Couldn't open file %s.", upload.Path))
	}
	defer f.Close()

	fields := upload.Values()
	if upload.Name == "" {
		fields.Set("Name", filepath.Base(upload.Path))
	}

	var resp domain.IdResponse
	err = c.Call(ctx, Request{
		Method:   http.MethodPost,
		Path:     PathFileUpload,
		Encoding: EncodingMultipart,
		Fields:   fields,
		File: &FilePart{
			Field:    "File",
			FileName: filepath.Base(upload.Path),
			Content:  f,
		},
		Authenticated: true,
	}, &resp)
	return resp.Id, err
}

func (c *Client) FilterFiles(ctx context.Context) ([]domain.NumFile, error) {
	var files []domain.NumFile
	err := c.Call(ctx, Request{Path: PathFileFilter, Authenticated: true}, &files)
	return files, err
}

func (c *Client) DeleteFile(ctx context.Context, action domain.FileAction) error {
	return c.Call(ctx, Request{
		Method:        http.MethodPost,
		Path:          PathFileDelete,
		Encoding:      EncodingForm,
		Fields:        action.Values(),
		Authenticated: true,
	}, nil)
}

func (c *Client) FilterUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	var list domain.UserList
	err := c.Call(ctx, Request{
		Path:          PathUsers,
		Fields:        filter.Values(),
		Authenticated: true,
	}, &list)
	return list.Users, err
}

// FindUser returns the user with exactly the given username.
func (c *Client) FindUser(ctx context.Context, username string) (*domain.User, error) {
	users, err := c.FilterUsers(ctx, domain.UserFilter{Username: username})
	if err != nil {
		return nil, err
	}
	if len(users) != 1 || users[0].Username != username {
		return nil, domain.ErrNotFound
	}
	return &users[0], nil
}

func (c *Client) AddUser(ctx context.Context, req domain.UserRequest) error {
	return c.userChange(ctx, PathUsersAdd, req)
}

func (c *Client) EditUser(ctx context.Context, req domain.UserRequest) error {
	return c.userChange(ctx, PathUsersEdit, req)
}

func (c *Client) userChange(ctx context.Context, path string, req domain.UserRequest) error {
	return c.Call(ctx, Request{
		Method:        http.MethodPost,
		Path:          path,
		Encoding:      EncodingForm,
		Fields:        req.Values(),
		Authenticated: true,
	}, nil)
}

func (c *Client) Permissions(ctx context.Context) ([]domain.Permission, error) {
	var perms []domain.Permission
	err := c.Call(ctx, Request{Path: PathUsersPermission, Authenticated: true}, &perms)
	return perms, err
}

func (c *Client) ServiceConfig(ctx context.Context) (domain.ServiceConfig, error) {
	var cfg domain.ServiceConfig
	err := c.Call(ctx, Request{Path: PathServicesConfig, Authenticated: true}, &cfg)
	return cfg, err
}

// UpdateServiceConfig sends the configuration as JSON body {Config, Token}.
func (c *Client) UpdateServiceConfig(ctx context.Context, cfg domain.ServiceConfig) error {
	return c.Call(ctx, Request{
		Method:        http.MethodPost,
		Path:          PathServicesConfig,
		Encoding:      EncodingJSON,
		Body:          domain.ServiceConfigRequest{Config: cfg},
		Authenticated: true,
	}, nil)
}

func (c *Client) ServiceStatus(ctx context.Context) ([]domain.ServiceStatus, error) {
	var status []domain.ServiceStatus
	err := c.Call(ctx, Request{Path: PathServicesStatus, Authenticated: true}, &status)
	return status, err
}
