package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 30)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name      string
		items     []int
		page      int
		size      int
		want      []int
		wantPages int
	}{
		{"first page", items, 1, 12, items[0:12], 3},
		{"middle page", items, 2, 12, items[12:24], 3},
		{"short last page", items, 3, 12, items[24:30], 3},
		{"beyond last page", items, 4, 12, []int{}, 3},
		{"page zero", items, 0, 12, []int{}, 3},
		{"negative page", items, -1, 12, []int{}, 3},
		{"exact fit", items[:8], 2, 4, items[4:8], 2},
		{"empty input", nil, 1, 12, []int{}, 0},
		{"zero size", items, 1, 0, []int{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.items, tt.page, tt.size)
			assert.Equal(t, tt.want, p.Items)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, len(tt.items), p.TotalItems)
			assert.Equal(t, tt.page, p.Page)
		})
	}
}

func TestPaginate_CopiesItems(t *testing.T) {
	items := []string{"a", "b", "c"}
	p := Paginate(items, 1, 2)
	p.Items[0] = "z"
	assert.Equal(t, "a", items[0])
}

func TestPage_PrevNext(t *testing.T) {
	p := Paginate([]int{1, 2, 3, 4, 5}, 1, 2)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p = Paginate([]int{1, 2, 3, 4, 5}, 3, 2)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 0, nil},
		{1, 1, nil},
		{1, 2, []int{1, 2}},
		{3, 5, []int{1, 2, 3, 4, 5}},
		{1, 10, []int{1, 2, 0, 10}},
		{3, 10, []int{1, 2, 3, 4, 0, 10}},
		{4, 10, []int{1, 0, 3, 4, 5, 0, 10}},
		{8, 10, []int{1, 0, 7, 8, 9, 10}},
		{10, 10, []int{1, 0, 9, 10}},
		{1, 6, []int{1, 2, 0, 6}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PageNumbers(tt.current, tt.total), "current=%d total=%d", tt.current, tt.total)
	}
}
