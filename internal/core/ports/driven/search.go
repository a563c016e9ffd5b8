package driven

import (
	"context"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// WikiSearchAPI runs paginated queries against the wiki's search endpoint.
type WikiSearchAPI interface {
	// Search returns up to limit results for query, starting at offset.
	// Failures are reported as *domain.NetworkError.
	Search(ctx context.Context, query string, limit, offset int) (*domain.SearchPage, error)
}

// ContentSource fetches the stored body of a single piece of content.
type ContentSource interface {
	// ContentBody returns the raw storage-format markup for a content ID.
	ContentBody(ctx context.Context, contentID string) (string, error)
}

// WikiClient is the full surface of a wiki connection.
type WikiClient interface {
	WikiSearchAPI
	ContentSource

	// Origin returns the wiki base URL used to key cached content.
	Origin() string
}
