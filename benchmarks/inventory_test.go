package benchmarks

import (
	"fmt"
	"testing"

	"github.com/randalmurphal/census/pkg/census"
)

// BenchmarkNew measures inventory creation overhead.
func BenchmarkNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		census.New[int](census.WithName("bench"))
	}
}

// BenchmarkTrackRelease measures the full life of a single value.
func BenchmarkTrackRelease(b *testing.B) {
	inv := census.New[int]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inv.Track(i).Release()
	}
}

// BenchmarkCloneRelease measures reference counting without the table.
func BenchmarkCloneRelease(b *testing.B) {
	inv := census.New[int]()
	h := inv.Track(0)
	defer h.Release()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Clone().Release()
	}
}

// BenchmarkCloneRelease_Parallel measures contended reference counting.
func BenchmarkCloneRelease_Parallel(b *testing.B) {
	inv := census.New[int]()
	h := inv.Track(0)
	defer h.Release()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			h.Clone().Release()
		}
	})
}

func benchmarkList(b *testing.B, n int) {
	inv := census.New[int]()
	handles := make([]*census.TrackedObject[int], n)
	for i := range n {
		handles[i] = inv.Track(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, h := range inv.List() {
			h.Release()
		}
	}
	b.StopTimer()
	for _, h := range handles {
		h.Release()
	}
}

// BenchmarkList_10 lists an inventory of 10 values.
func BenchmarkList_10(b *testing.B) { benchmarkList(b, 10) }

// BenchmarkList_1000 lists an inventory of 1000 values.
func BenchmarkList_1000(b *testing.B) { benchmarkList(b, 1000) }

// BenchmarkTrackRelease_Parallel measures contention on the slot table.
func BenchmarkTrackRelease_Parallel(b *testing.B) {
	for _, listers := range []int{0, 1} {
		b.Run(fmt.Sprintf("listers=%d", listers), func(b *testing.B) {
			inv := census.New[int]()
			stop := make(chan struct{})
			for range listers {
				go func() {
					for {
						select {
						case <-stop:
							return
						default:
							inv.Values()
						}
					}
				}()
			}
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					inv.Track(i).Release()
					i++
				}
			})
			b.StopTimer()
			close(stop)
		})
	}
}
