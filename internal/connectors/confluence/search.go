package confluence

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
)

// searchExpand asks for the fields a Result is built from.
const searchExpand = "ancestors,space,history,version"

// searchResponse is the body of /rest/api/content/search.
type searchResponse struct {
	Results   []content `json:"results"`
	Start     int       `json:"start"`
	Limit     int       `json:"limit"`
	Size      int       `json:"size"`
	TotalSize *int      `json:"totalSize"`
}

type content struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Space     *space     `json:"space"`
	History   *history   `json:"history"`
	Version   *version   `json:"version"`
	Ancestors []ancestor `json:"ancestors"`
	Body      *body      `json:"body"`
	Links     links      `json:"_links"`
}

type space struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type user struct {
	AccountID   string `json:"accountId"`
	UserKey     string `json:"userKey"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PublicName  string `json:"publicName"`
}

type history struct {
	CreatedBy   *user  `json:"createdBy"`
	CreatedDate string `json:"createdDate"`
}

type version struct {
	When string `json:"when"`
	By   *user  `json:"by"`
}

type ancestor struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Links links  `json:"_links"`
}

type links struct {
	WebUI string `json:"webui"`
}

type body struct {
	Storage struct {
		Value string `json:"value"`
	} `json:"storage"`
}

// Search runs a CQL query and returns one page of results.
func (c *Client) Search(ctx context.Context, query string, limit, offset int) (*domain.SearchPage, error) {
	params := url.Values{}
	params.Set("cql", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("start", strconv.Itoa(offset))
	params.Set("expand", searchExpand)

	var resp searchResponse
	if err := c.getJSON(ctx, "search", "/rest/api/content/search", params, &resp); err != nil {
		return nil, err
	}

	page := &domain.SearchPage{
		Items:      make([]domain.Result, 0, len(resp.Results)),
		TotalCount: -1,
		Returned:   len(resp.Results),
	}
	if resp.TotalSize != nil {
		page.TotalCount = *resp.TotalSize
	}
	for i := range resp.Results {
		if resp.Results[i].ID == "" {
			continue
		}
		page.Items = append(page.Items, toResult(&resp.Results[i]))
	}
	return page, nil
}

// toResult maps a REST content object onto a Result.
func toResult(c *content) domain.Result {
	r := domain.Result{
		ID:      c.ID,
		Title:   c.Title,
		Type:    domain.ContentType(strings.ToLower(c.Type)),
		WebPath: c.Links.WebUI,
	}
	if c.Space != nil {
		r.Space = domain.Space{Key: c.Space.Key, Name: c.Space.Name}
	}
	if c.History != nil {
		r.Creator = toPerson(c.History.CreatedBy)
		r.CreatedAt = parseTime(c.History.CreatedDate)
	}
	if c.Version != nil {
		r.ModifiedAt = parseTime(c.Version.When)
	}
	if len(c.Ancestors) > 0 {
		r.Ancestors = make([]domain.Ancestor, 0, len(c.Ancestors))
		for _, a := range c.Ancestors {
			if a.ID == "" {
				continue
			}
			r.Ancestors = append(r.Ancestors, domain.Ancestor{ID: a.ID, Title: a.Title, WebPath: a.Links.WebUI})
		}
	}
	return r
}

// toPerson picks the identifier CQL's contributor field accepts:
// accountId on Cloud, userKey or username on Data Center.
func toPerson(u *user) domain.Person {
	if u == nil {
		return domain.Person{}
	}
	key := u.AccountID
	if key == "" {
		key = u.UserKey
	}
	if key == "" {
		key = u.Username
	}
	name := u.DisplayName
	if name == "" {
		name = u.PublicName
	}
	return domain.Person{Key: key, DisplayName: name}
}

// parseTime accepts RFC 3339 timestamps with or without fractional seconds.
// Unparseable values yield the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
