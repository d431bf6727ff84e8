package ordered_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamaindor/salon-cms/internal/entity"
	"github.com/lamaindor/salon-cms/internal/ordered"
)

func gallery(ids ...string) *ordered.Gallery {
	items := make([]entity.GalleryItem, len(ids))
	for i, id := range ids {
		items[i] = entity.NormalizeGalleryItem(map[string]any{"id": id, "alt": id}, i)
	}

	return ordered.New(items)
}

func orderIndexes[T any, P ordered.Ptr[T]](items []T) []int {
	out := make([]int, len(items))
	for i := range items {
		out[i] = P(&items[i]).Base().OrderIndex
	}

	return out
}

func TestInsertAssignsNextSlot(t *testing.T) {
	s := &ordered.Services{}

	for i, title := range []string{"a", "b", "c"} {
		svc := entity.NormalizeService(map[string]any{"title": title, "order_index": 999}, 0)
		require.True(t, s.Insert(svc))
		assert.Equal(t, i*10, s.List()[i].OrderIndex)
	}

	assert.Equal(t, []int{0, 10, 20}, orderIndexes(s.List()))

	dup := s.List()[0]
	assert.False(t, s.Insert(dup))
	assert.Equal(t, 3, s.Len())
}

func TestReplaceSortsStableAndReindexes(t *testing.T) {
	items := []entity.Review{
		{Meta: entity.Meta{ID: "c", OrderIndex: 30}},
		{Meta: entity.Meta{ID: "a", OrderIndex: 5}},
		{Meta: entity.Meta{ID: "b", OrderIndex: 5}},
		{Meta: entity.Meta{ID: "d", OrderIndex: -2}},
		{Meta: entity.Meta{ID: "a", OrderIndex: 100}},
	}

	s := ordered.New(items)

	assert.Equal(t, []string{"d", "a", "b", "c"}, s.IDs())
	assert.Equal(t, []int{0, 10, 20, 30}, orderIndexes(s.List()))
}

func TestReindexProducesMultiplesOfTen(t *testing.T) {
	s := gallery("a", "b", "c", "d", "e")
	s.Delete("b")
	s.Reorder("e", "a")
	s.Delete("c")

	idx := orderIndexes(s.List())
	for i, v := range idx {
		assert.Equal(t, i*10, v)
	}
}

func TestUpdate(t *testing.T) {
	prev := entity.Now
	entity.Now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { entity.Now = prev })

	s := gallery("a", "b")
	before, _ := s.Get("b")

	ok := s.Update("b", func(g *entity.GalleryItem) {
		g.Alt = "new alt"
		g.ID = "hijack"
		g.OrderIndex = 500
	})
	require.True(t, ok)

	after, found := s.Get("b")
	require.True(t, found)
	assert.Equal(t, "new alt", after.Alt)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, 10, after.OrderIndex)
	assert.Equal(t, "2030-01-01T00:00:00.000Z", after.UpdatedAt)

	assert.False(t, s.Update("missing", func(*entity.GalleryItem) { t.Fatal("patch called for unknown id") }))
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	s := gallery("a", "b")
	assert.False(t, s.Delete("zzz"))
	assert.Equal(t, []string{"a", "b"}, s.IDs())
}

func TestReorder(t *testing.T) {
	testCases := []struct {
		name    string
		ids     []string
		moved   string
		target  string
		changed bool
		want    []string
	}{
		{name: "B onto A", ids: []string{"A", "B"}, moved: "B", target: "A", changed: true, want: []string{"B", "A"}},
		{name: "move backwards", ids: []string{"a", "b", "c", "d"}, moved: "d", target: "b", changed: true, want: []string{"a", "d", "b", "c"}},
		{name: "move forwards", ids: []string{"a", "b", "c", "d"}, moved: "a", target: "c", changed: true, want: []string{"b", "c", "a", "d"}},
		{name: "same id", ids: []string{"a", "b"}, moved: "a", target: "a", want: []string{"a", "b"}},
		{name: "unknown moved", ids: []string{"a", "b"}, moved: "x", target: "a", want: []string{"a", "b"}},
		{name: "unknown target", ids: []string{"a", "b"}, moved: "a", target: "x", want: []string{"a", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := gallery(tc.ids...)

			targetPos := -1
			for i, id := range tc.ids {
				if id == tc.target {
					targetPos = i
				}
			}

			assert.Equal(t, tc.changed, s.Reorder(tc.moved, tc.target))
			assert.Equal(t, tc.want, s.IDs())
			assert.Equal(t, tc.want, ordered.ComputeReorder(tc.ids, tc.moved, tc.target))

			if tc.changed {
				assert.Equal(t, tc.moved, s.IDs()[targetPos])
			}

			for i, v := range orderIndexes(s.List()) {
				assert.Equal(t, i*10, v)
			}
		})
	}
}

func TestReorderScenarioGallery(t *testing.T) {
	s := gallery("A", "B")
	assert.Equal(t, []int{0, 10}, orderIndexes(s.List()))

	require.True(t, s.Reorder("B", "A"))

	list := s.List()
	assert.Equal(t, "B", list[0].ID)
	assert.Equal(t, 0, list[0].OrderIndex)
	assert.Equal(t, "A", list[1].ID)
	assert.Equal(t, 10, list[1].OrderIndex)
}

func TestComputeReorderDoesNotAlias(t *testing.T) {
	in := []string{"a", "b", "c"}
	out := ordered.ComputeReorder(in, "c", "a")

	assert.Equal(t, []string{"a", "b", "c"}, in)
	assert.Equal(t, []string{"c", "a", "b"}, out)
}

func TestSnapshotRestore(t *testing.T) {
	s := gallery("a", "b")
	snap := s.Snapshot()

	s.Insert(entity.NormalizeGalleryItem(map[string]any{"id": "c"}, 0))
	s.Update("a", func(g *entity.GalleryItem) { g.Alt = "changed" })
	s.Restore(snap)

	assert.Equal(t, []string{"a", "b"}, s.IDs())

	a, _ := s.Get("a")
	assert.Equal(t, "a", a.Alt)

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestListIsACopy(t *testing.T) {
	s := gallery("a")
	list := s.List()
	list[0].Alt = "mutated"

	a, _ := s.Get("a")
	assert.Equal(t, "a", a.Alt)
}
