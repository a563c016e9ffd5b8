package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// ContentBody fetches the storage-format body of a page or blog post.
func (c *Client) ContentBody(ctx context.Context, contentID string) (string, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return "", fmt.Errorf("%w: content ID is empty", domain.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("expand", "body.storage")

	var resp content
	path := "/rest/api/content/" + url.PathEscape(contentID)
	if err := c.getJSON(ctx, "content body", path, params, &resp); err != nil {
		return "", err
	}
	if resp.Body == nil {
		return "", nil
	}
	return resp.Body.Storage.Value, nil
}
