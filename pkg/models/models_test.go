package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageOutcome_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		outcome PageOutcome
		want    string
	}{
		{
			name: "success",
			outcome: Success([]Record{
				{Name: "A", Role: "MK", Affiliation: "PartyX"},
			}),
			want: `{"records":[{"name":"A","role":"MK","affiliation":"PartyX"}]}`,
		},
		{
			name:    "success without rows",
			outcome: Success(nil),
			want:    `{"records":[]}`,
		},
		{
			name:    "failure",
			outcome: Failure("https://site/view=1", ErrCodeTimeout, "content marker did not appear"),
			want:    `{"url":"https://site/view=1","error":"content marker did not appear","code":"EXTRACTION_TIMEOUT"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.outcome)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestPageOutcome_ZeroValueIsEmptySuccess(t *testing.T) {
	var o PageOutcome
	assert.True(t, o.OK())

	got, err := json.Marshal(o)
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[]}`, string(got))
}

func TestPageOutcome_UnmarshalKeepsTag(t *testing.T) {
	data := `[{"records":[]},{"url":"https://site/view=1","error":"boom","code":"NAVIGATION_FAILED"}]`

	var batch BatchResult
	require.NoError(t, json.Unmarshal([]byte(data), &batch))
	require.Len(t, batch, 2)

	assert.True(t, batch[0].OK())
	assert.Empty(t, batch[0].Records())

	assert.False(t, batch[1].OK())
	assert.Equal(t, "https://site/view=1", batch[1].URL())
	assert.Equal(t, ErrCodeNavigation, batch[1].Code())
}

func TestBatchResult_Counts(t *testing.T) {
	batch := BatchResult{
		Success(nil),
		Failure("u1", ErrCodeNavigation, "x"),
		Success([]Record{{Name: "A"}}),
	}
	succeeded, failed := batch.Counts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
}

func TestAsScrapeError(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	wrapped := fmt.Errorf("scraper: %w", NewScrapeError(ErrCodeNavigation, "failed to load page", cause))

	se := AsScrapeError(wrapped)
	assert.Equal(t, ErrCodeNavigation, se.Code)
	assert.Equal(t, "failed to load page: net::ERR_NAME_NOT_RESOLVED", se.Error())
	assert.ErrorIs(t, se, cause)

	plain := AsScrapeError(errors.New("boom"))
	assert.Equal(t, ErrCodeUnexpected, plain.Code)
	assert.Equal(t, "boom", plain.Error())
}

func TestFailureFromError(t *testing.T) {
	o := FailureFromError("https://site", NewScrapeError(ErrCodeExtraction, "failed to extract records", nil))
	assert.False(t, o.OK())
	assert.Equal(t, "https://site", o.URL())
	assert.Equal(t, ErrCodeExtraction, o.Code())
	assert.Equal(t, "failed to extract records", o.Message())
}

func TestPageOutcome_Accessors(t *testing.T) {
	ok := Success([]Record{{Name: "A"}})
	assert.True(t, ok.OK())
	assert.Equal(t, []Record{{Name: "A"}}, ok.Records())
	assert.Empty(t, ok.URL())
	assert.Empty(t, ok.Code())
	assert.Empty(t, ok.Message())

	failed := Failure("https://site/view=1", ErrCodeTimeout, "timed out")
	assert.False(t, failed.OK())
	assert.Nil(t, failed.Records())
	assert.Equal(t, "https://site/view=1", failed.URL())
	assert.Equal(t, ErrCodeTimeout, failed.Code())
	assert.Equal(t, "timed out", failed.Message())
}
