package library

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/landinghub/pagekit/core/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func samplePage(title string) *page.PageData {
	return &page.PageData{
		Canvas:   &page.Canvas{Width: "1200"},
		Elements: []page.Element{page.NewElement(page.TextData{Text: "Hello", Tag: "h1"})},
		Meta:     &page.Meta{Title: title, Keywords: []string{}},
	}
}

func TestStoreLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Add(ctx, Template{Name: "SaaS hero", Category: "saas", Keywords: []string{"hero"}, PageData: samplePage("SaaS")})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "2026-03-01T09:00:01.000Z", first.CreatedAt)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second, err := s.Add(ctx, Template{Name: "Event", PageData: samplePage("Event")})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, []string{}, list[1].Keywords)

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, first.ID), ErrNotFound)

	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStoreRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, Template{Name: "Broken", PageData: &page.PageData{Canvas: &page.Canvas{}}})
	assert.ErrorIs(t, err, page.ErrInvalidDocument)

	_, err = s.Add(ctx, Template{Name: "Nil"})
	assert.ErrorIs(t, err, page.ErrInvalidDocument)

	_, err = s.Add(ctx, Template{Name: " ", PageData: samplePage("x")})
	assert.Error(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	s, err := Open(path)
	require.NoError(t, err)
	added, err := s.Add(context.Background(), Template{Name: "Keep", PageData: samplePage("Keep")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.PageData.Meta.Title)
}
