package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXOAuth2Start(t *testing.T) {
	mech := &xoauth2{email: "someone@example.com", token: "ya29.token"}

	name, resp, err := mech.Start()
	assert.NoError(t, err)
	assert.Equal(t, "XOAUTH2", name)
	assert.Equal(t, "user=someone@example.com\x01auth=Bearer ya29.token\x01\x01", string(resp))
}

func TestXOAuth2Next(t *testing.T) {
	mech := &xoauth2{}

	resp, err := mech.Next([]byte(`{"status":"400"}`))
	assert.NoError(t, err)
	assert.Empty(t, resp)
}

func TestFetchWindow(t *testing.T) {
	for _, tc := range []struct {
		name          string
		total         int
		limit         int
		offset        int
		start, end    int
	}{
		{name: "first page", total: 100, limit: 10, offset: 0, start: 91, end: 100},
		{name: "second page", total: 100, limit: 10, offset: 10, start: 81, end: 90},
		{name: "limit larger than mailbox", total: 5, limit: 50, offset: 0, start: 1, end: 5},
		{name: "last partial page", total: 25, limit: 10, offset: 20, start: 1, end: 5},
		{name: "single message", total: 1, limit: 10, offset: 0, start: 1, end: 1},
		{name: "offset past the end clamps to oldest", total: 5, limit: 2, offset: 10, start: 1, end: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			start, end, ok := fetchWindow(tc.total, tc.limit, tc.offset)

			assert.True(t, ok)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}
