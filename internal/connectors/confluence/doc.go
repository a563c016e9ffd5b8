// Package confluence implements driven.WikiClient for Confluence.
//
// # Architecture
//
// The connector comprises the following components:
//
//   - Client: handles REST API communication with rate limiting
//   - RateLimiter: proactive request throttling plus Retry-After handling
//   - Search: runs CQL queries against /rest/api/content/search
//   - ContentBody: fetches storage-format markup for summaries
//
// # Authentication
//
// Two authentication methods are supported:
//
//   - Basic: account email (or username) and an API token. This is what
//     Confluence Cloud expects.
//
//   - Bearer: a personal access token, as issued by Confluence Data Center.
//     The token is attached by an oauth2 static token source.
//
// # Errors
//
// Every failure is returned as a *domain.NetworkError carrying the HTTP
// status. 401 and 403 also match domain.ErrAuthInvalid, 404 matches
// domain.ErrNotFound and 429 matches domain.ErrRateLimited.
package confluence
