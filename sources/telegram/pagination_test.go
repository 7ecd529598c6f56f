package telegram

import "testing"

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, pages, want int
	}{
		{1, 5, 1},
		{5, 5, 5},
		{0, 5, 1},
		{-3, 5, 1},
		{9, 5, 5},
		{1, 0, 1},
		{7, -1, 1},
	}

	for _, tc := range cases {
		if got := ClampPage(tc.page, tc.pages); got != tc.want {
			t.Errorf("ClampPage(%d, %d) = %d, want %d", tc.page, tc.pages, got, tc.want)
		}
	}
}
