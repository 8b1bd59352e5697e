package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeafName(t *testing.T) {
	for _, tc := range []struct {
		name      string
		delimiter string
		expected  string
	}{
		{name: "INBOX", delimiter: "/", expected: "INBOX"},
		{name: "Archive/Receipts", delimiter: "/", expected: "Receipts"},
		{name: "[Gmail]/Sent Mail", delimiter: "/", expected: "Sent Mail"},
		{name: "a/b/c", delimiter: "/", expected: "c"},
		{name: "Projects.2024", delimiter: ".", expected: "2024"},
		{name: "Flat", delimiter: "", expected: "Flat"},
	} {
		assert.Equal(t, tc.expected, leafName(tc.name, tc.delimiter))
	}
}
