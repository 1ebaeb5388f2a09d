package summitlog

import (
	"net/http"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/summitlog/summitlog/content"
)

const (
	searchMaxResults    = 50
	searchPreviewLength = 200
)

type searchQuery struct {
	Query      string   `json:"query"`
	Country    string   `json:"country,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func (q searchQuery) validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Query, validation.Required.Error("search query required"), validation.RuneLength(1, 100).Error("search query too long")),
		validation.Field(&q.Country, validation.RuneLength(0, 50)),
		validation.Field(&q.Difficulty, validation.In(toAnys(content.Difficulties)...)),
		validation.Field(&q.Tags, validation.Length(0, 5), validation.Each(validation.RuneLength(1, 30))),
	)
}

// searchResult is the public projection of a record: no gps coordinates, no
// body, no draft internals.
type searchResult struct {
	Slug             string   `json:"slug"`
	Title            string   `json:"title"`
	PeakName         string   `json:"peak_name"`
	Country          string   `json:"country"`
	ElevationM       int      `json:"elevation_m"`
	DifficultyRating string   `json:"difficulty_rating"`
	AscentType       string   `json:"ascent_type"`
	Tags             []string `json:"tags"`
	FeaturedImage    string   `json:"featured_image,omitempty"`
	Description      string   `json:"description,omitempty"`
	Featured         bool     `json:"featured"`
}

type searchResponse struct {
	Success   bool           `json:"success"`
	Results   []searchResult `json:"results"`
	Total     int            `json:"total"`
	Query     searchQuery    `json:"query"`
	Timestamp string         `json:"timestamp"`
}

func (a *App) handleSearch(c echo.Context) error {
	if !a.searchLimiter.Allow(c.RealIP()) {
		return &APIError{
			Status:  http.StatusTooManyRequests,
			Code:    CodeRateLimit,
			Message: "Too many requests. Please try again later.",
		}
	}

	q := searchQuery{
		Query:      c.QueryParam("q"),
		Country:    c.QueryParam("country"),
		Difficulty: c.QueryParam("difficulty"),
		Tags:       SplitCSV(c.QueryParam("tags")),
	}
	if err := q.validate(); err != nil {
		return ValidationError("Invalid search parameters")
	}

	records, err := a.Collection.List()
	if err != nil {
		return InternalError("An error occurred while searching. Please try again.", err)
	}

	results := []searchResult{}
	for _, r := range records {
		if !matchesQuery(r, q) {
			continue
		}
		results = append(results, toSearchResult(r))
	}

	// Featured entries first, taller peaks first within each group.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Featured != results[j].Featured {
			return results[i].Featured
		}
		return results[i].ElevationM > results[j].ElevationM
	})
	if len(results) > searchMaxResults {
		results = results[:searchMaxResults]
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=300, s-maxage=600")
	c.Response().Header().Set("Vary", "Accept-Encoding")
	return c.JSON(http.StatusOK, searchResponse{
		Success:   true,
		Results:   results,
		Total:     len(results),
		Query:     q,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// matchesQuery applies all supplied filters conjunctively. The free-text
// query is a substring match over title, peak name, country, description,
// and tags; country and difficulty are exact; tag filters are disjunctive
// case-insensitive substring matches.
func matchesQuery(r content.PeakRecord, q searchQuery) bool {
	if q.Query != "" {
		needle := strings.ToLower(q.Query)
		haystack := strings.ToLower(strings.Join(append([]string{
			r.Title, r.PeakName, r.Country, r.Description,
		}, r.Tags...), " "))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if q.Country != "" && r.Country != q.Country {
		return false
	}
	if q.Difficulty != "" && r.DifficultyRating != q.Difficulty {
		return false
	}
	if len(q.Tags) > 0 {
		matched := false
		for _, want := range q.Tags {
			for _, have := range r.Tags {
				if strings.Contains(strings.ToLower(have), strings.ToLower(want)) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func toSearchResult(r content.PeakRecord) searchResult {
	res := searchResult{
		Slug:             r.Slug,
		Title:            r.Title,
		PeakName:         r.PeakName,
		Country:          r.Country,
		ElevationM:       r.ElevationM,
		DifficultyRating: r.DifficultyRating,
		AscentType:       r.AscentType,
		Tags:             r.Tags,
		FeaturedImage:    r.FeaturedImage,
		Featured:         r.Featured,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if r.Description != "" {
		preview := r.Description
		if len(preview) > searchPreviewLength {
			preview = preview[:searchPreviewLength]
		}
		res.Description = preview + "..."
	}
	return res
}
