package website

import (
	"strconv"

	"github.com/sciclub/clubsite/src/templates"
	"github.com/sciclub/clubsite/src/utils"
)

// An empty listing still has one page.
func getPageInfo(
	pageParam string,
	totalItems int,
	itemsPerPage int,
) (
	page int,
	totalPages int,
	ok bool,
) {
	totalPages = utils.NumPages(totalItems, itemsPerPage)
	ok = true

	page = 1
	if pageParam != "" {
		if pageParsed, err := strconv.Atoi(pageParam); err == nil {
			page = pageParsed
		} else {
			return 0, 0, false
		}
	}
	if page < 1 || totalPages < page {
		return 0, 0, false
	}

	return
}

func makePagination(current, total int, buildUrl func(page int) string) templates.Pagination {
	pagination := templates.Pagination{
		Current: current,
		Total:   total,

		FirstUrl: buildUrl(1),
		LastUrl:  buildUrl(total),
	}
	if current > 1 {
		pagination.PreviousUrl = buildUrl(current - 1)
	}
	if current < total {
		pagination.NextUrl = buildUrl(current + 1)
	}
	return pagination
}
