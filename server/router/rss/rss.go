// Package rss serves the journal as an RSS feed so entries can be read
// from a feed reader.
package rss

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/akalem0808/memori/internal/profile"
	"github.com/akalem0808/memori/store"
)

const maxFeedItems = 20

type RSSService struct {
	Profile *profile.Profile
	Store   *store.Store
}

func NewRSSService(profile *profile.Profile, store *store.Store) *RSSService {
	return &RSSService{
		Profile: profile,
		Store:   store,
	}
}

func (s *RSSService) RegisterRoutes(g *echo.Group) {
	g.GET("/feed.rss", s.GetFeed)
}

// GetFeed renders the most recent records, newest first.
func (s *RSSService) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()
	limit := maxFeedItems
	records, err := s.Store.ListMemoryRecords(ctx, &store.FindMemoryRecord{Limit: &limit})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list memories").SetInternal(err)
	}

	baseURL := s.Profile.InstanceURL
	feed := &feeds.Feed{
		Title:       "Memori",
		Link:        &feeds.Link{Href: baseURL},
		Description: "Recent journal memories",
		Created:     time.Now(),
	}

	for _, record := range records {
		item := &feeds.Item{
			Id:          record.UID,
			Title:       feedTitle(record),
			Link:        &feeds.Link{Href: baseURL + "/m/" + record.UID},
			Description: record.Text,
		}
		if record.CreatedTs != 0 {
			item.Created = time.Unix(record.CreatedTs, 0).UTC()
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render feed").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml", []byte(rss))
}

// feedTitle uses the first line of the entry, truncated for readers
// that render long titles poorly.
func feedTitle(record *store.MemoryRecord) string {
	title := record.Text
	for i, r := range title {
		if r == '\n' || i >= 80 {
			title = title[:i]
			break
		}
	}
	if title == "" {
		title = "Untitled memory"
	}
	return title
}
