package model

import "fmt"

// ConfigurationError reports a missing or invalid pay parameter.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DataError reports a malformed time entry or an impossible input value.
// A batch containing one is rejected as a whole.
type DataError struct {
	EntryID int64
	Reason  string
}

func (e *DataError) Error() string {
	if e.EntryID == 0 {
		return "data error: " + e.Reason
	}
	return fmt.Sprintf("data error: entry %d: %s", e.EntryID, e.Reason)
}

// FetchError reports a failure talking to the time-tracking service.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
