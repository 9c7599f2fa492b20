package respond

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/h44z/sms-portal/internal/domain"
)

func TestStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	Status(rec, http.StatusNoContent)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSON_nil(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "null", rec.Body.String())
}

func TestResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	Response(rec, domain.IdResponse{Id: "42"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Response":{"Id":"42"}}`, rec.Body.String())
}

func TestErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Errors(rec, http.StatusBadRequest,
		domain.FieldError{Field: "Dst", Type: "required", Message: "Dst is required."},
		domain.FieldError{Message: "Try again."})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"Errors":[{"Field":"Dst","Type":"required","Message":"Dst is required."},{"Message":"Try again."}]}`,
		rec.Body.String())
}

func TestErrors_empty(t *testing.T) {
	rec := httptest.NewRecorder()
	Errors(rec, http.StatusInternalServerError)

	assert.JSONEq(t, `{"Errors":[]}`, rec.Body.String())
}

func TestAttachmentReader(t *testing.T) {
	rec := httptest.NewRecorder()
	AttachmentReader(rec, http.StatusOK, "messages.csv", "text/csv", 0, strings.NewReader("ID,Dst\n1,4912\n"))

	res := rec.Result()
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "attachment; filename=messages.csv", res.Header.Get("Content-Disposition"))
	assert.Equal(t, "text/csv", res.Header.Get("Content-Type"))
	assert.Empty(t, res.Header.Get("Content-Length"))
	assert.Equal(t, "ID,Dst\n1,4912\n", string(body))
}
