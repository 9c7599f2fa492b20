package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

type staticToken string

func (s staticToken) Token(_ context.Context) (string, bool) {
	return string(s), s != ""
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []int
}

func (o *recordingObserver) ObserveRequest(_ string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, status)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.GatewayConfig{BaseUrl: srv.URL, UserAgent: "test"}, staticToken("abc"), opts...)
}

func writeJson(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_Authenticate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathAuth, r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("Username"))
		assert.Equal(t, "x", r.PostForm.Get("Password"))
		assert.False(t, r.PostForm.Has(TokenParam))
		writeJson(w, http.StatusOK, `{"Response":{"Token":"abc"}}`)
	})

	token, err := client.Authenticate(context.Background(), domain.LoginRequest{Username: "alice", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestClient_QueryTokenAndRequestId(t *testing.T) {
	observer := &recordingObserver{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get(TokenParam))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "test", r.Header.Get("User-Agent"))
		writeJson(w, http.StatusOK,
			`{"Response":{"Username":"alice","Name":"Alice","Permissions":["List campaigns"]}}`)
	}, WithObserver(observer))

	info, err := client.UserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)
	assert.True(t, info.Can(domain.PermListCampaigns))
	assert.Equal(t, []int{http.StatusOK}, observer.calls)
}

func TestClient_JsonTokenInjection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `"abc"`, string(body[TokenParam]))
		assert.JSONEq(t, `{"HTTPAddr":":8443"}`, string(body["Config"]))
		writeJson(w, http.StatusOK, `{"Response":true}`)
	})

	err := client.UpdateServiceConfig(context.Background(), domain.ServiceConfig(`{"HTTPAddr":":8443"}`))
	assert.NoError(t, err)
}

func TestClient_MultipartUpload(t *testing.T) {
	file := filepath.Join(t.TempDir(), "numbers.csv")
	require.NoError(t, os.WriteFile(file, []byte("9779800000000\n9779800000001\n"), 0o600))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "abc", r.FormValue(TokenParam))
		assert.Equal(t, "numbers.csv", r.FormValue("Name"))
		assert.Equal(t, "october list", r.FormValue("Description"))

		f, hdr, err := r.FormFile("File")
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "numbers.csv", hdr.Filename)
		assert.Contains(t, string(content), "9779800000001")

		writeJson(w, http.StatusOK, `{"Response":{"Id":"file-1"}}`)
	})

	id, err := client.UploadFile(context.Background(), domain.FileUpload{Path: file, Description: "october list"})
	require.NoError(t, err)
	assert.Equal(t, "file-1", id)
}

func TestClient_StopCampaign(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "42", r.PostForm.Get("CampaignID"))
		assert.Equal(t, "abc", r.PostForm.Get(TokenParam))
		writeJson(w, http.StatusOK, `{"Response":{"Count":7}}`)
	})

	resp, err := client.StopCampaign(context.Background(), domain.CampaignAction{CampaignID: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.Count)
}

func TestClient_ErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   []domain.FieldError
	}{
		{
			name:   "list form",
			status: http.StatusBadRequest,
			body:   `{"Errors":[{"Field":"Dst","Message":"Invalid destination."},{"Message":"Second."}]}`,
			want: []domain.FieldError{
				{Field: "Dst", Message: "Invalid destination."},
				{Message: "Second."},
			},
		},
		{
			name:   "map form",
			status: http.StatusBadRequest,
			body:   `{"Errors":{"FileId":"Couldn't get any file.","Enc":"Invalid encoding."}}`,
			want: []domain.FieldError{
				{Field: "Enc", Message: "Invalid encoding."},
				{Field: "FileId", Message: "Couldn't get any file."},
			},
		},
		{
			name:   "unreadable body",
			status: http.StatusInternalServerError,
			body:   `<html>oops</html>`,
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJson(w, tt.status, tt.body)
			})

			_, err := client.FilterCampaigns(context.Background())
			var apiErr *domain.ApiError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Errors)
		})
	}
}

func TestClient_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJson(w, http.StatusUnauthorized, `{"Errors":[{"Message":"Invalid token."}]}`)
	})

	_, err := client.FilterFiles(context.Background())
	assert.True(t, domain.IsUnauthorized(err))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	observer := &recordingObserver{}
	client := NewClient(&config.GatewayConfig{BaseUrl: srv.URL}, staticToken("abc"), WithObserver(observer))

	_, err := client.ServiceStatus(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)

	var apiErr *domain.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, []int{0}, observer.calls)
}

func TestClient_ExportMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("CSV"))
		assert.Equal(t, "Delivered", r.URL.Query().Get("Status"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "ID,Dst\n1,9779800000000\n")
	})

	var buf bytes.Buffer
	n, err := client.ExportMessages(context.Background(), domain.MessageFilter{Status: domain.MsgDelivered}, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "ID,Dst\n1,9779800000000\n", buf.String())
}

func TestClient_FindUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("Username") {
		case "bob":
			writeJson(w, http.StatusOK, `{"Response":{"Users":[{"Username":"bob","Name":"Bob"}]}}`)
		default:
			writeJson(w, http.StatusOK, `{"Response":{"Users":[]}}`)
		}
	})

	user, err := client.FindUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name)

	_, err = client.FindUser(context.Background(), "carol")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_InvalidSuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, `not json`)
	})

	_, err := client.FilterFiles(context.Background())
	var apiErr *domain.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Error(t, apiErr.Cause)
}
