// Package request reads the parameters of gateway API requests.
//
// The gateway accepts parameters from the query string for GET requests and from url-encoded or
// multipart bodies for POST requests. All helpers look at both.
package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// MaxMemory is the part of a multipart body that is kept in memory, the rest is stored in temporary files.
const MaxMemory = 8 << 20

func parse(r *http.Request) {
	if r.Form == nil {
		_ = r.ParseMultipartForm(MaxMemory) // also parses url-encoded bodies and the query string
	}
}

// ParamRaw returns the first value of the named parameter, as is.
func ParamRaw(r *http.Request, name string) string {
	parse(r)
	return r.Form.Get(name)
}

// Param returns the first value of the named parameter without surrounding whitespace.
func Param(r *http.Request, name string) string {
	return strings.TrimSpace(ParamRaw(r, name))
}

// ParamSlice returns all non-empty values of the named parameter.
// Values are trimmed. If the parameter is missing, nil is returned.
func ParamSlice(r *http.Request, name string) []string {
	parse(r)

	var result []string
	for _, value := range r.Form[name] {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}
	return result
}

// ParamInt parses the named parameter as integer. An empty parameter yields 0.
func ParamInt(r *http.Request, name string) (int64, error) {
	value := Param(r, name)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return n, nil
}

// ParamBool returns true for the values accepted by strconv.ParseBool as true.
func ParamBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(Param(r, name))
	return b
}

// IsJson returns true if the request body is JSON encoded.
func IsJson(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// BodyJson decodes the JSON value from the request body into the target.
// The body reader is closed after reading.
func BodyJson(r *http.Request, target any) error {
	defer func() {
		_ = r.Body.Close()
	}()
	return json.NewDecoder(r.Body).Decode(target)
}
