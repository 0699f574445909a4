package model

import "testing"

func TestPage_InRange(t *testing.T) {
	tests := []struct {
		name  string
		page  Page
		count int
		want  bool
	}{
		{"first page of empty set", Page{Number: 1, Size: 10}, 0, true},
		{"last partial page", Page{Number: 2, Size: 10}, 11, true},
		{"past the end", Page{Number: 3, Size: 10}, 11, false},
		{"zero", Page{Number: 0, Size: 10}, 11, false},
		{"beyond max page number", Page{Number: MaxPageNumber + 1, Size: MaxPageSize}, 11, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.InRange(tt.count); got != tt.want {
				t.Errorf("InRange(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestPage_OffsetAtMaxPageNumber(t *testing.T) {
	p := Page{Number: MaxPageNumber, Size: MaxPageSize}

	if p.Offset() < 0 {
		t.Fatalf("Offset() overflowed: %d", p.Offset())
	}
	if p.HasNext(100) {
		t.Error("HasNext should be false far past the result set")
	}
}
