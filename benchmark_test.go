package pagestore

import (
	"context"
	"fmt"
	"testing"
)

// Benchmark basic operations.

func BenchmarkMemory_Write(b *testing.B) {
	m := NewMemory()
	ctx := context.Background()
	value := []byte("benchmark-value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Write(ctx, fmt.Sprintf("key:%d", i), value)
	}
}

func BenchmarkMemory_Read(b *testing.B) {
	m := NewMemory()
	ctx := context.Background()
	value := []byte("benchmark-value")

	// Setup: populate with keys.
	for i := 0; i < 1000; i++ {
		_ = m.Write(ctx, fmt.Sprintf("key:%d", i), value)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Read(ctx, fmt.Sprintf("key:%d", i%1000))
	}
}

func BenchmarkStore_SaveObject(b *testing.B) {
	s := New()
	ctx := context.Background()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.SaveObject(ctx, fmt.Sprintf("rec:%d", i), record{Name: "bench", Count: i})
	}
}

func BenchmarkStore_GetObject(b *testing.B) {
	s := New()
	ctx := context.Background()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	for i := 0; i < 1000; i++ {
		_ = s.SaveObject(ctx, fmt.Sprintf("rec:%d", i), record{Name: "bench", Count: i})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GetObject[record](ctx, s, fmt.Sprintf("rec:%d", i%1000))
	}
}

func BenchmarkList_Append(b *testing.B) {
	s := New()
	ctx := context.Background()
	list := NewList[string](s, "bench", Batch(25))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = list.Append(ctx, "element")
	}
}

func BenchmarkList_Append_WithEviction(b *testing.B) {
	s := New()
	ctx := context.Background()
	list := NewList[string](s, "bench", Limit(100), Batch(25))

	// Fill to the limit so every benchmarked append evicts.
	for i := 0; i < 100; i++ {
		_ = list.Append(ctx, "element")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = list.Append(ctx, "element")
	}
}

func BenchmarkList_All(b *testing.B) {
	s := New()
	ctx := context.Background()
	list := NewList[string](s, "bench", Batch(25))

	items := make([]string, 500)
	for i := range items {
		items[i] = fmt.Sprintf("element-%d", i)
	}
	if err := list.Save(ctx, items); err != nil {
		b.Fatalf("Save failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = list.All(ctx)
	}
}

func BenchmarkList_Page(b *testing.B) {
	s := New()
	ctx := context.Background()
	list := NewList[string](s, "bench", Batch(25))

	items := make([]string, 500)
	for i := range items {
		items[i] = fmt.Sprintf("element-%d", i)
	}
	if err := list.Save(ctx, items); err != nil {
		b.Fatalf("Save failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = list.Page(ctx, i%20+1)
	}
}

func BenchmarkList_Remove(b *testing.B) {
	s := New()
	ctx := context.Background()
	list := NewList[int](s, "bench", Batch(25))

	items := make([]int, b.N)
	for i := range items {
		items[i] = i
	}
	if err := list.Save(ctx, items); err != nil {
		b.Fatalf("Save failed: %v", err)
	}

	b.ResetTimer()
	for i := b.N - 1; i >= 0; i-- {
		target := i
		_ = list.Remove(ctx, func(v int) bool { return v == target })
	}
}
