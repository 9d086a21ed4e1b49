package pager

import (
	"testing"

	"github.com/m3rciful/refbot/internal/catalog"
)

func makeEntries(n int) []catalog.Entry {
	items := make([]catalog.Entry, n)
	for i := range items {
		items[i] = catalog.Entry{ID: i + 1}
	}
	return items
}

func TestRenderEmpty(t *testing.T) {
	if _, ok := Render(nil, 0, DefaultPageSize); ok {
		t.Fatalf("empty list must report nothing to render")
	}
}

func TestRenderClampsPage(t *testing.T) {
	items := makeEntries(20)

	p, ok := Render(items, -3, 15)
	if !ok || p.Number != 0 {
		t.Fatalf("negative page: got %+v, %v", p, ok)
	}
	p, ok = Render(items, 99, 15)
	if !ok || p.Number != 1 {
		t.Fatalf("overflow page: got %+v, %v", p, ok)
	}
	if len(p.Items) != 5 || p.Items[0].ID != 16 {
		t.Fatalf("last page slice wrong: %+v", p.Items)
	}
	if p.HasNext || !p.HasPrev {
		t.Fatalf("last page nav wrong: %+v", p)
	}
}

func TestRenderNavigationFlags(t *testing.T) {
	items := makeEntries(31)
	p, _ := Render(items, 0, 15)
	if p.HasPrev || !p.HasNext {
		t.Fatalf("first page nav wrong: %+v", p)
	}
	p, _ = Render(items, 1, 15)
	if !p.HasPrev || !p.HasNext {
		t.Fatalf("middle page nav wrong: %+v", p)
	}
	p, _ = Render(items, 2, 15)
	if !p.HasPrev || p.HasNext {
		t.Fatalf("final page nav wrong: %+v", p)
	}
	if len(p.Items) != 1 || p.Items[0].ID != 31 {
		t.Fatalf("final page slice wrong: %+v", p.Items)
	}
}

func TestRenderRoundTripAllSizes(t *testing.T) {
	items := makeEntries(23)
	for pageSize := 1; pageSize <= 25; pageSize++ {
		var rebuilt []catalog.Entry
		for page := 0; ; page++ {
			p, ok := Render(items, page, pageSize)
			if !ok {
				t.Fatalf("pageSize %d page %d: nothing to render", pageSize, page)
			}
			if p.Number != page {
				t.Fatalf("pageSize %d: page %d clamped to %d mid-walk", pageSize, page, p.Number)
			}
			rebuilt = append(rebuilt, p.Items...)
			if !p.HasNext {
				break
			}
		}
		if len(rebuilt) != len(items) {
			t.Fatalf("pageSize %d: rebuilt %d items, want %d", pageSize, len(rebuilt), len(items))
		}
		for i := range items {
			if rebuilt[i].ID != items[i].ID {
				t.Fatalf("pageSize %d: order broken at %d", pageSize, i)
			}
		}
	}
}
