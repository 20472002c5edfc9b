package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequestClamps(t *testing.T) {
	req := NewPageRequest(0, 0)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.PerPage)

	req = NewPageRequest(-5, -1)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.PerPage)

	req = NewPageRequest(3, 500)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 100, req.PerPage)

	assert.Equal(t, 200, NewPageRequest(3, 100).Offset())
}

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(NewPageRequest(1, 10), 35)
	assert.Equal(t, 4, meta.Pages)
	assert.True(t, meta.HasNext)
	assert.False(t, meta.HasPrev)

	meta = NewPageMeta(NewPageRequest(4, 10), 35)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	// Beyond the last page: empty data, prev still navigable.
	meta = NewPageMeta(NewPageRequest(9, 10), 35)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = NewPageMeta(NewPageRequest(1, 10), 0)
	assert.Zero(t, meta.Pages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}
