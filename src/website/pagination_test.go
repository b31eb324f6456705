package website

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPageInfo(t *testing.T) {
	items := []struct {
		name                string
		pageParam           string
		totalItems, perPage int
		page, totalPages    int
		ok                  bool
	}{
		{"good, no param", "", 85, 10, 1, 9, true},
		{"good", "2", 85, 10, 2, 9, true},
		{"last partial page", "9", 85, 10, 9, 9, true},
		{"exact fit", "", 30, 10, 1, 3, true},
		{"too big", "10", 85, 10, 0, 0, false},
		{"too small", "0", 85, 10, 0, 0, false},
		{"negative", "-1", 85, 10, 0, 0, false},
		{"pizza", "pizza", 85, 10, 0, 0, false},
		{"zero items, no param", "", 0, 10, 1, 1, true}, // should go to page 1
		{"zero items, page 1", "1", 0, 10, 1, 1, true},
		{"zero items, too big", "2", 0, 10, 0, 0, false},
		{"zero items, too small", "0", 0, 10, 0, 0, false},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			page, totalPages, ok := getPageInfo(item.pageParam, item.totalItems, item.perPage)
			assert.Equal(t, item.page, page)
			assert.Equal(t, item.totalPages, totalPages)
			assert.Equal(t, item.ok, ok)
		})
	}
}

func TestMakePagination(t *testing.T) {
	build := func(page int) string { return "/p/" + strconv.Itoa(page) }

	first := makePagination(1, 3, build)
	assert.Equal(t, "", first.PreviousUrl)
	assert.Equal(t, "/p/2", first.NextUrl)
	assert.Equal(t, "/p/1", first.FirstUrl)
	assert.Equal(t, "/p/3", first.LastUrl)

	middle := makePagination(2, 3, build)
	assert.Equal(t, "/p/1", middle.PreviousUrl)
	assert.Equal(t, "/p/3", middle.NextUrl)

	last := makePagination(3, 3, build)
	assert.Equal(t, "/p/2", last.PreviousUrl)
	assert.Equal(t, "", last.NextUrl)

	only := makePagination(1, 1, build)
	assert.Equal(t, "", only.PreviousUrl)
	assert.Equal(t, "", only.NextUrl)
}
