package pagestore

import (
	"context"
	"errors"
	"testing"
)

type mockDriver struct {
	readFunc   func(ctx context.Context, key string) ([]byte, error)
	writeFunc  func(ctx context.Context, key string, value []byte) error
	deleteFunc func(ctx context.Context, key string) error
	existsFunc func(ctx context.Context, key string) (bool, error)
	keysFunc   func(ctx context.Context) ([]string, error)
	clearFunc  func(ctx context.Context) error
}

func (m *mockDriver) Read(ctx context.Context, key string) ([]byte, error) {
	if m.readFunc != nil {
		return m.readFunc(ctx, key)
	}
	return nil, ErrNotFound
}

func (m *mockDriver) Write(ctx context.Context, key string, value []byte) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, key, value)
	}
	return nil
}

func (m *mockDriver) Delete(ctx context.Context, key string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return ErrNotFound
}

func (m *mockDriver) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, key)
	}
	return false, nil
}

func (m *mockDriver) Keys(ctx context.Context) ([]string, error) {
	if m.keysFunc != nil {
		return m.keysFunc(ctx)
	}
	return nil, nil
}

func (m *mockDriver) Clear(ctx context.Context) error {
	if m.clearFunc != nil {
		return m.clearFunc(ctx)
	}
	return nil
}

func (m *mockDriver) Close() error {
	return nil
}

func TestWithDriver(t *testing.T) {
	mock := &mockDriver{}
	s := New(WithDriver(mock))

	if s.driver != mock {
		t.Errorf("WithDriver failed: expected mock driver")
	}
}

func TestWithDriver_NilIgnored(t *testing.T) {
	s := New(WithDriver(nil))

	// Should keep default Memory when nil is passed
	if _, ok := s.driver.(*Memory); !ok {
		t.Errorf("nil driver should keep default Memory, got %T", s.driver)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New()

	if _, ok := s.driver.(*Memory); !ok {
		t.Errorf("New should default to Memory, got %T", s.driver)
	}
	if _, ok := s.codec.(JSONCodec); !ok {
		t.Errorf("New should default to JSONCodec, got %T", s.codec)
	}
}

func TestWithCodec_NilIgnored(t *testing.T) {
	s := New(WithCodec(nil))

	if _, ok := s.codec.(JSONCodec); !ok {
		t.Errorf("nil codec should keep default JSONCodec, got %T", s.codec)
	}
}

func TestPageKeyDerivation(t *testing.T) {
	if got := pageKey("fruit", 3); got != "fruit.3" {
		t.Errorf("pageKey = %q, want %q", got, "fruit.3")
	}
	if got := metaKey("fruit"); got != "fruit.meta" {
		t.Errorf("metaKey = %q, want %q", got, "fruit.meta")
	}
}

func TestStore_SaveObject_GetObject(t *testing.T) {
	s := New()
	ctx := context.Background()

	type user struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	if err := s.SaveObject(ctx, "user:1", user{Name: "Alice", Age: 30}); err != nil {
		t.Fatalf("SaveObject failed: %v", err)
	}

	got, err := GetObject[user](ctx, s, "user:1")
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	if got.Name != "Alice" || got.Age != 30 {
		t.Errorf("GetObject = %+v, want Alice/30", got)
	}

	_, err = GetObject[user](ctx, s, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetObject missing key: expected ErrNotFound, got %v", err)
	}
}

func TestStore_SaveObject_NilRemoves(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveString(ctx, "k", "v"); err != nil {
		t.Fatalf("SaveString failed: %v", err)
	}
	if err := s.SaveObject(ctx, "k", nil); err != nil {
		t.Fatalf("SaveObject(nil) failed: %v", err)
	}
	if s.Contains(ctx, "k") {
		t.Error("key should be gone after SaveObject(nil)")
	}
}

func TestStore_SaveObject_EmptyKey(t *testing.T) {
	s := New()

	if err := s.SaveObject(context.Background(), "", "v"); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
}

func TestStore_Scalars_RoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SaveString(ctx, "s", "hello")
	s.SaveInt(ctx, "i", -7)
	s.SaveInt64(ctx, "i64", 1<<40)
	s.SaveFloat64(ctx, "f", 2.5)
	s.SaveBool(ctx, "b", true)

	if got := s.GetString(ctx, "s", "x"); got != "hello" {
		t.Errorf("GetString = %q, want hello", got)
	}
	if got := s.GetInt(ctx, "i", 0); got != -7 {
		t.Errorf("GetInt = %d, want -7", got)
	}
	if got := s.GetInt64(ctx, "i64", 0); got != 1<<40 {
		t.Errorf("GetInt64 = %d, want 1<<40", got)
	}
	if got := s.GetFloat64(ctx, "f", 0); got != 2.5 {
		t.Errorf("GetFloat64 = %f, want 2.5", got)
	}
	if got := s.GetBool(ctx, "b", false); !got {
		t.Error("GetBool = false, want true")
	}
}

func TestStore_Scalars_DefaultOnAnyFailure(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Missing key
	if got := s.GetString(ctx, "missing", "def"); got != "def" {
		t.Errorf("GetString missing = %q, want def", got)
	}
	if got := s.GetInt(ctx, "missing", 42); got != 42 {
		t.Errorf("GetInt missing = %d, want 42", got)
	}

	// Type mismatch degrades to the default too
	s.SaveString(ctx, "str", "not a number")
	if got := s.GetInt(ctx, "str", 42); got != 42 {
		t.Errorf("GetInt mismatched = %d, want 42", got)
	}

	// Driver failure
	errDriver := &mockDriver{
		readFunc: func(ctx context.Context, key string) ([]byte, error) {
			return nil, errors.New("disk on fire")
		},
	}
	s2 := New(WithDriver(errDriver))
	if got := s2.GetBool(ctx, "k", true); !got {
		t.Error("GetBool should return the default on driver failure")
	}
}

func TestStore_GetRaw(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SaveString(ctx, "k", "v"); err != nil {
		t.Fatalf("SaveString failed: %v", err)
	}

	data, err := s.GetRaw(ctx, "k")
	if err != nil {
		t.Fatalf("GetRaw failed: %v", err)
	}
	if string(data) != `"v"` {
		t.Errorf("GetRaw = %s, want %q", data, `"v"`)
	}

	if _, err := s.GetRaw(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRaw missing: expected ErrNotFound, got %v", err)
	}
}

func TestStore_Contains(t *testing.T) {
	s := New()
	ctx := context.Background()

	list := NewList[string](s, "fruit", Batch(2))
	if err := list.Save(ctx, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Pages and metadata exist, but no base record at exactly "fruit".
	if s.Contains(ctx, "fruit") {
		t.Error("Contains should not count pages or metadata")
	}

	s.SaveString(ctx, "fruit", "base")
	if !s.Contains(ctx, "fruit") {
		t.Error("Contains should see the base record")
	}
	if s.Contains(ctx, "") {
		t.Error("Contains with empty key should be false")
	}
}

func TestStore_Remove_StopsAtFirstMissingPage(t *testing.T) {
	deleted := []string{}
	mock := &mockDriver{
		deleteFunc: func(ctx context.Context, key string) error {
			// Pages 1 and 2 exist, everything else is missing.
			if key == "k.1" || key == "k.2" || key == "k.meta" || key == "k" {
				deleted = append(deleted, key)
				return nil
			}
			return ErrNotFound
		},
	}
	s := New(WithDriver(mock))

	if err := s.Remove(context.Background(), "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	want := []string{"k.1", "k.2", "k.meta", "k"}
	if len(deleted) != len(want) {
		t.Fatalf("deleted %v, want %v", deleted, want)
	}
	for i := range want {
		if deleted[i] != want[i] {
			t.Errorf("deleted[%d] = %q, want %q", i, deleted[i], want[i])
		}
	}
}

func TestStore_Clear(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SaveString(ctx, "a", "1")
	s.SaveString(ctx, "b", "2")

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys after Clear = %v, want none", keys)
	}
}

func TestStore_Keys_DriverError(t *testing.T) {
	wantErr := errors.New("keys exploded")
	mock := &mockDriver{
		keysFunc: func(ctx context.Context) ([]string, error) {
			return nil, wantErr
		},
	}
	s := New(WithDriver(mock))

	if _, err := s.Keys(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Keys should propagate driver error, got %v", err)
	}
}
