package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/h44z/sms-portal/internal/domain"
)

type successEnvelope struct {
	Response json.RawMessage
}

type errorEnvelope struct {
	Errors json.RawMessage
}

func decodeSuccess(r io.Reader, out any) error {
	var env successEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(env.Response) == 0 {
		return errors.New("response envelope without Response member")
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeErrors reads the error envelope. Both the list form [{Field, Message}] and the older
// map form {"field": "message"} are understood. Unreadable bodies yield nil.
func decodeErrors(r io.Reader) []domain.FieldError {
	var env errorEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil || len(env.Errors) == 0 {
		return nil
	}

	var list []domain.FieldError
	if err := json.Unmarshal(env.Errors, &list); err == nil {
		return list
	}

	var byField map[string]string
	if err := json.Unmarshal(env.Errors, &byField); err == nil {
		fields := make([]string, 0, len(byField))
		for field := range byField {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		list = make([]domain.FieldError, 0, len(byField))
		for _, field := range fields {
			list = append(list, domain.FieldError{Field: field, Message: byField[field]})
		}
		return list
	}

	return nil
}
