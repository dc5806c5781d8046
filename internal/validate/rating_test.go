package validate

import (
	"errors"
	"testing"
)

func TestRating(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		want    int
		wantErr bool
	}{
		{"one star", 1, 1, false},
		{"five stars", 5, 5, false},
		{"three stars", 3, 3, false},
		{"zero", 0, 0, true},
		{"six", 6, 0, true},
		{"negative", -2, 0, true},
		{"half star", 4.5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rating(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRating) {
					t.Errorf("error = %v, want ErrInvalidRating", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
