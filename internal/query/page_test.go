package query

import "testing"

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        PageRequest
		wantPage  int
		wantLimit int
	}{
		{"zero values", PageRequest{}, DefaultPage, DefaultLimit},
		{"negative values", PageRequest{Page: -3, Limit: -1}, DefaultPage, DefaultLimit},
		{"in range", PageRequest{Page: 4, Limit: 25}, 4, 25},
		{"limit capped", PageRequest{Page: 1, Limit: 5000}, 1, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("normalize %+v = %+v, want page=%d limit=%d", tc.in, got, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	req := PageRequest{Page: 3, Limit: 10}
	if got := req.Offset(); got != 20 {
		t.Fatalf("offset = %d, want 20", got)
	}
}

func TestNewPageTotals(t *testing.T) {
	page := NewPage([]string{"a", "b", "c"}, 23, PageRequest{Page: 1, Limit: 10})

	if page.TotalItems != 23 {
		t.Fatalf("totalItems = %d, want 23", page.TotalItems)
	}
	if page.TotalPages != 3 {
		t.Fatalf("totalPages = %d, want 3", page.TotalPages)
	}
	if !page.HasNext || page.HasPrev {
		t.Fatalf("expected hasNext and not hasPrev on first page, got %+v", page)
	}
}

func TestNewPageBeyondLastPage(t *testing.T) {
	// Requesting past the end returns no items but keeps the totals accurate.
	page := NewPage[string](nil, 23, PageRequest{Page: 9, Limit: 10})

	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", page.Items)
	}
	if page.TotalItems != 23 || page.TotalPages != 3 {
		t.Fatalf("totals must stay accurate, got %+v", page)
	}
	if page.HasNext {
		t.Fatal("no next page past the end")
	}
	if !page.HasPrev {
		t.Fatal("pages before the requested one exist")
	}
}

func TestNewPageEmptyResult(t *testing.T) {
	page := NewPage[string](nil, 0, PageRequest{Page: 1, Limit: 10})

	if page.TotalItems != 0 || page.TotalPages != 0 {
		t.Fatalf("expected zero totals, got %+v", page)
	}
	if page.HasNext || page.HasPrev {
		t.Fatalf("no neighbors for an empty result, got %+v", page)
	}
}
