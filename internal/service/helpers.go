package service

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// paginate clamps page into range and returns it with the page count and row offset.
func paginate(total, perPage, page int) (int, int, int) {
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return page, pages, (page - 1) * perPage
}

var apostrophes = strings.NewReplacer("'", "", "\u2019", "")

// slugify transliterates s to ASCII and joins its words with single hyphens.
func slugify(s string) string {
	return slug.Make(apostrophes.Replace(s))
}
