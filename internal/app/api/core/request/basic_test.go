package request

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/message", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParam_query(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/message/filter?Dst=+4912+&Token=abc", nil)

	assert.Equal(t, "4912", Param(r, "Dst"))
	assert.Equal(t, " 4912 ", ParamRaw(r, "Dst"))
	assert.Equal(t, "abc", Param(r, "Token"))
	assert.Empty(t, Param(r, "Src"))
}

func TestParam_form(t *testing.T) {
	r := formRequest(url.Values{"Msg": {"hello"}})

	assert.Equal(t, "hello", Param(r, "Msg"))
}

func TestParam_multipart(t *testing.T) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("Name", "numbers"))
	require.NoError(t, mw.WriteField("Token", "abc"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/file/upload", buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	assert.Equal(t, "numbers", Param(r, "Name"))
	assert.Equal(t, "abc", Param(r, "Token"))
}

func TestParamSlice(t *testing.T) {
	r := formRequest(url.Values{"Permissions": {"Send message", " ", " List users "}})

	assert.Equal(t, []string{"Send message", "List users"}, ParamSlice(r, "Permissions"))
	assert.Nil(t, ParamSlice(r, "Missing"))
}

func TestParamInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?CampaignID=42&PerPage=ten", nil)

	n, err := ParamInt(r, "CampaignID")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = ParamInt(r, "Priority")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ParamInt(r, "PerPage")
	assert.EqualError(t, err, "PerPage must be a number")
}

func TestParamBool(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?CSV=true&Suspended=no", nil)

	assert.True(t, ParamBool(r, "CSV"))
	assert.False(t, ParamBool(r, "Suspended"))
	assert.False(t, ParamBool(r, "Missing"))
}

func TestBodyJson(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/services/config",
		strings.NewReader(`{"Token":"abc","Config":{"a":1}}`))
	r.Header.Set("Content-Type", "application/json")

	var body struct {
		Token string
	}
	require.True(t, IsJson(r))
	require.NoError(t, BodyJson(r, &body))
	assert.Equal(t, "abc", body.Token)
}
