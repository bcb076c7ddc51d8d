package util

import (
	"errors"
	"strconv"
)

const PageSize = 32

var ErrInvalidPage = errors.New("invalid page")

// ResolvePage maps the raw "page" parameter onto a 1-based page number.
// An empty value is the first page and "last" is the last one; page 1 always
// exists, even for an empty result.
func ResolvePage(raw string, total int64, size int) (int, error) {
	pages := NumPages(total, size)
	switch raw {
	case "":
		return 1, nil
	case "last":
		return pages, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 || page > pages {
		return 0, ErrInvalidPage
	}
	return page, nil
}

func NumPages(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

func Calculate(page, size int) (offset int, limit int) {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size, size
}
