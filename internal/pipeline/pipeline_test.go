package pipeline

import (
	"sync/atomic"
	"testing"
)

func TestTask(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		size    int
	}{
		{"single worker", 1, 10},
		{"more workers than data", 8, 3},
		{"uneven split", 3, 10},
		{"empty data", 4, 0},
		{"zero workers falls back to one", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]int, tt.size)
			for i := range data {
				data[i] = i + 1
			}

			var sum, calls atomic.Int64
			Task(tt.workers, data, func(v int) {
				sum.Add(int64(v))
				calls.Add(1)
			})

			want := int64(tt.size * (tt.size + 1) / 2)
			if sum.Load() != want {
				t.Errorf("sum = %d, want %d", sum.Load(), want)
			}
			if calls.Load() != int64(tt.size) {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.size)
			}
		})
	}
}

func TestTaskIndexed(t *testing.T) {
	out := make([]int, 17)
	TaskIndexed(4, len(out), func(i int) {
		out[i] = i * i
	})

	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i*i)
		}
	}
}
