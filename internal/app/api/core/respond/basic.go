// Package respond writes the response envelopes of the gateway API.
//
// Successful calls are answered with {"Response": <data>}, failed calls with
// {"Errors": [{"Field", "Type", "Message"}]}.
package respond

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/h44z/sms-portal/internal/domain"
)

type responseEnvelope struct {
	Response any
}

type errorEnvelope struct {
	Errors []domain.FieldError
}

// Status writes a response with the given status code.
// The response will not contain any data.
func Status(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// JSON writes a JSON response with the given status code and data.
// If data is nil, the response will be null. Encoding errors are silently ignored.
func JSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if data == nil {
		_, _ = w.Write([]byte("null"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}

// Response wraps the data in the success envelope.
func Response(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, responseEnvelope{Response: data})
}

// Errors writes the error envelope. The list is never null, even without errors.
func Errors(w http.ResponseWriter, code int, errs ...domain.FieldError) {
	if errs == nil {
		errs = []domain.FieldError{}
	}
	JSON(w, code, errorEnvelope{Errors: errs})
}

// AttachmentReader streams the data as downloadable file.
// The content length is optional, it is only set if the given length is greater than 0.
func AttachmentReader(
	w http.ResponseWriter,
	code int,
	filename, contentType string,
	contentLength int,
	data io.Reader,
) {
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Type", contentType)
	if contentLength > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(contentLength))
	}
	w.WriteHeader(code)

	_, _ = io.Copy(w, data)
}
