package response

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	maxPage      = 100000
)

// Page reads ?page and ?limit, clamped to sane bounds.
func Page(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// DateRange is a half-open [From, To) window.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange reads ?startDate and ?endDate. Both must be present for a
// window to apply. A bare date as endDate covers that whole day.
func ParseDateRange(c *gin.Context) (*DateRange, error) {
	start, end := c.Query("startDate"), c.Query("endDate")
	if start == "" || end == "" {
		return nil, nil
	}
	from, _, err := parseDate(start)
	if err != nil {
		return nil, apperror.BadRequest("Invalid startDate %q", start)
	}
	to, dateOnly, err := parseDate(end)
	if err != nil {
		return nil, apperror.BadRequest("Invalid endDate %q", end)
	}
	if dateOnly {
		to = to.AddDate(0, 0, 1)
	} else {
		to = to.Add(time.Nanosecond)
	}
	if !to.After(from) {
		return nil, apperror.BadRequest("endDate must not be before startDate")
	}
	return &DateRange{From: from, To: to}, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

// Today returns the window covering the current local day.
func Today(now time.Time) DateRange {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateRange{From: from, To: from.AddDate(0, 0, 1)}
}
