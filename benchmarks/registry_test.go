package benchmarks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/randalmurphal/workerreg/pkg/workerreg"
	"github.com/randalmurphal/workerreg/pkg/workerreg/journal"
)

func startRegistry(b *testing.B, opts ...workerreg.Option) *workerreg.Registry {
	b.Helper()
	opts = append([]workerreg.Option{
		workerreg.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	reg, err := workerreg.Start("bench-"+uuid.NewString(), opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = reg.Stop(context.Background()) })
	return reg
}

func populate(b *testing.B, reg *workerreg.Registry, n int) []string {
	b.Helper()
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("worker-%d", i)
		if _, err := reg.Create(context.Background(), names[i]); err != nil {
			b.Fatal(err)
		}
	}
	return names
}

// BenchmarkLookup_Hit measures a read of a registered name.
func BenchmarkLookup_Hit(b *testing.B) {
	reg := startRegistry(b)
	names := populate(b, reg, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Lookup(names[i%len(names)])
	}
}

// BenchmarkLookup_Miss measures a read of an unknown name.
func BenchmarkLookup_Miss(b *testing.B) {
	reg := startRegistry(b)
	populate(b, reg, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Lookup("absent")
	}
}

// BenchmarkLookup_Parallel measures reads from many goroutines.
func BenchmarkLookup_Parallel(b *testing.B) {
	reg := startRegistry(b)
	names := populate(b, reg, 100)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = reg.Lookup(names[i%len(names)])
			i++
		}
	})
}

// BenchmarkLookup_PackageLevel includes the identity directory read.
func BenchmarkLookup_PackageLevel(b *testing.B) {
	reg := startRegistry(b)
	populate(b, reg, 100)
	id := reg.Identity()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = workerreg.Lookup(id, "worker-7")
	}
}

// BenchmarkCreate_Existing measures a coordinator round-trip without a spawn.
func BenchmarkCreate_Existing(b *testing.B) {
	ctx := context.Background()
	reg := startRegistry(b)
	populate(b, reg, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Create(ctx, "worker-0")
	}
}

// BenchmarkCreate_Existing_Parallel measures contention on the coordinator.
func BenchmarkCreate_Existing_Parallel(b *testing.B) {
	ctx := context.Background()
	reg := startRegistry(b)
	populate(b, reg, 1)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = reg.Create(ctx, "worker-0")
		}
	})
}

// BenchmarkCreate_Spawn measures creating a fresh worker per iteration.
// The name table is copied on every insert, so cost grows with b.N.
func BenchmarkCreate_Spawn(b *testing.B) {
	ctx := context.Background()
	reg := startRegistry(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Create(ctx, fmt.Sprintf("w-%d", i))
	}
}

// BenchmarkCreate_SpawnWithJournal adds a SQLite journal write per spawn.
func BenchmarkCreate_SpawnWithJournal(b *testing.B) {
	ctx := context.Background()
	store, err := journal.NewSQLiteStore(filepath.Join(b.TempDir(), "journal.db"))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = store.Close() })
	reg := startRegistry(b, workerreg.WithJournal(store))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.Create(ctx, fmt.Sprintf("w-%d", i))
	}
}
