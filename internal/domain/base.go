package domain

import "time"

// PrivateString is never exposed in JSON or log output.
type PrivateString string

func (PrivateString) MarshalJSON() ([]byte, error) {
	return []byte(`""`), nil
}

func (PrivateString) String() string {
	return ""
}

// FormatUnix renders a gateway timestamp for display.
func FormatUnix(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Local().Format("2006-01-02 15:04:05")
}

// IdResponse is returned by endpoints creating a record.
type IdResponse struct {
	Id string
}
