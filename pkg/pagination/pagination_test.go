package pagination

import "testing"

func TestNormalizeAppliesDefaults(t *testing.T) {
	got := Normalize(Params{})
	if got.Page != 1 || got.Limit != DefaultLimit {
		t.Fatalf("expected page 1 limit %d, got %+v", DefaultLimit, got)
	}
}

func TestNormalizeCapsLimit(t *testing.T) {
	got := Normalize(Params{Page: 2, Limit: 500})
	if got.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, got.Limit)
	}
	if got.Page != 2 {
		t.Fatalf("page must pass through, got %d", got.Page)
	}
}

func TestNormalizeRejectsNegativePage(t *testing.T) {
	got := Normalize(Params{Page: -3, Limit: 10})
	if got.Page != 1 {
		t.Fatalf("expected page 1, got %d", got.Page)
	}
}

func TestOffset(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		want   int
	}{
		{"first page", Params{Page: 1, Limit: 20}, 0},
		{"third page", Params{Page: 3, Limit: 20}, 40},
		{"zero values use defaults", Params{}, 0},
		{"oversized limit is capped first", Params{Page: 2, Limit: 1000}, MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.params.Offset(); got != tc.want {
				t.Fatalf("expected offset %d got %d", tc.want, got)
			}
		})
	}
}
