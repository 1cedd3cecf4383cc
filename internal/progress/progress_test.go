package progress

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestBar(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		adds  []int
		want  int64
	}{
		{"complete", 100, []int{40, 60}, 100},
		{"stopped early", 100, []int{10}, 10},
		{"unknown size", 0, []int{5, 5, 5}, 15},
		{"no reads", 10, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			b := New(&out, tt.total, "rows.csv")
			for _, n := range tt.adds {
				b.Add(n)
			}
			b.Finish()
			if got := b.Count(); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(nil) {
		t.Error("IsTerminal(nil) = true")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}
