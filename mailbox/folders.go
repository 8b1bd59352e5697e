package mailbox

import (
	"strings"

	"github.com/emersion/go-imap"

	"mailview/utils"
)

// Folder describes one mailbox folder. FullName is the complete
// hierarchical path, Name the leaf segment.
type Folder struct {
	Name      string   `json:"name"`
	FullName  string   `json:"fullName"`
	Delimiter string   `json:"delimiter"`
	Flags     []string `json:"flags"`
}

// leafName returns the last path segment of a hierarchical folder name.
func leafName(name, delimiter string) string {
	if delimiter == "" {
		return name
	}

	if idx := strings.LastIndex(name, delimiter); idx >= 0 {
		return name[idx+len(delimiter):]
	}

	return name
}

// ListFolders returns the flattened folder hierarchy. The LIST response
// already carries full paths, so no recursive descent is needed.
func (c *Client) ListFolders() ([]Folder, error) {
	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)

	go func() {
		done <- c.client.List("", "*", mailboxes)
	}()

	var folders []Folder
	for mb := range mailboxes {
		folders = append(folders, Folder{
			Name:      leafName(mb.Name, mb.Delimiter),
			FullName:  mb.Name,
			Delimiter: mb.Delimiter,
			Flags:     mb.Attributes,
		})
	}

	if err := <-done; err != nil {
		return nil, utils.ConnectionError("error fetching folders", err)
	}

	return folders, nil
}
