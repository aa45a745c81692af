package conversation

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		entities    int
		scenarios   int
		constraints int
		want        int
	}{
		{"empty", 0, 0, 0, 0},
		{"entities only", 2, 0, 0, 20},
		{"entity cap", 5, 0, 0, 30},
		{"scenarios only", 0, 2, 0, 16},
		{"scenario cap", 0, 9, 0, 40},
		{"constraints only", 0, 0, 3, 15},
		{"constraint cap", 0, 0, 9, 20},
		{"bonus when all present", 1, 1, 1, 33},
		{"all caps plus bonus", 3, 5, 4, 100},
		{"clamped at 100", 50, 50, 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.entities, tt.scenarios, tt.constraints); got != tt.want {
				t.Errorf("Score(%d, %d, %d) = %d, want %d",
					tt.entities, tt.scenarios, tt.constraints, got, tt.want)
			}
		})
	}
}

func TestScoreIsPure(t *testing.T) {
	for range 3 {
		if got := Score(2, 3, 1); got != Score(2, 3, 1) {
			t.Fatal("Score is not deterministic")
		}
	}
}

func TestScoreBounds(t *testing.T) {
	for e := 0; e <= 12; e += 3 {
		for s := 0; s <= 12; s += 3 {
			for c := 0; c <= 12; c += 3 {
				got := Score(e, s, c)
				if got < 0 || got > 100 {
					t.Fatalf("Score(%d, %d, %d) = %d out of [0,100]", e, s, c, got)
				}
			}
		}
	}
}
