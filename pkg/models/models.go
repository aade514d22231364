package models

import (
	"encoding/json"
)

// Record is one member row extracted from a listing page
type Record struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Affiliation string `json:"affiliation"`
}

// PageOutcome is the result of scraping a single URL. It is either a success
// carrying the extracted records or a failure carrying the URL and a message.
// Build one with Success or Failure; the zero value is an empty success.
type PageOutcome struct {
	records []Record
	url     string
	message string
	code    string
	failed  bool
}

// Success builds a successful outcome. A nil slice is normalised to empty so
// that "no rows" still serialises as a records list.
func Success(records []Record) PageOutcome {
	if records == nil {
		records = []Record{}
	}
	return PageOutcome{records: records}
}

// Failure builds a failed outcome for url
func Failure(url, code, message string) PageOutcome {
	return PageOutcome{url: url, code: code, message: message, failed: true}
}

// FailureFromError builds a failed outcome from err, keeping the code when err
// is a *ScrapeError.
func FailureFromError(url string, err error) PageOutcome {
	se := AsScrapeError(err)
	return Failure(url, se.Code, se.Error())
}

// OK reports whether the outcome is a success
func (o PageOutcome) OK() bool {
	return !o.failed
}

// Records returns the extracted records of a success, or nil for a failure
func (o PageOutcome) Records() []Record {
	return o.records
}

// URL returns the URL of a failed page
func (o PageOutcome) URL() string {
	return o.url
}

// Code returns the error code of a failed page
func (o PageOutcome) Code() string {
	return o.code
}

// Message returns the error message of a failed page
func (o PageOutcome) Message() string {
	return o.message
}

// MarshalJSON emits {"records": [...]} for successes and
// {"url", "error", "code"} for failures.
func (o PageOutcome) MarshalJSON() ([]byte, error) {
	if o.failed {
		return json.Marshal(struct {
			URL  string `json:"url"`
			Err  string `json:"error"`
			Code string `json:"code,omitempty"`
		}{o.url, o.message, o.code})
	}
	records := o.records
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(struct {
		Records []Record `json:"records"`
	}{records})
}

// UnmarshalJSON restores the tag from the shape of the object
func (o *PageOutcome) UnmarshalJSON(data []byte) error {
	var raw struct {
		Records []Record `json:"records"`
		URL     string   `json:"url"`
		Err     string   `json:"error"`
		Code    string   `json:"code"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Records == nil && (raw.URL != "" || raw.Err != "") {
		*o = Failure(raw.URL, raw.Code, raw.Err)
		return nil
	}
	*o = Success(raw.Records)
	return nil
}

// BatchResult holds one outcome per input URL, in input order
type BatchResult []PageOutcome

// Counts returns the number of successful and failed outcomes
func (b BatchResult) Counts() (succeeded, failed int) {
	for _, o := range b {
		if o.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
