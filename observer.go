package pagestore

import "sync"

// Observer receives change and error notifications from a Store.
// Callbacks run synchronously on the goroutine performing the operation, so
// implementations should return quickly and must not call back into the same
// key of the Store.
type Observer interface {
	// OnChange is invoked after a successful mutation of key.
	OnChange(key string)

	// OnError is invoked for every caught I/O or serialization error.
	OnError(err error)
}

// ObserverFuncs adapts plain functions to the Observer interface.
// Nil fields are skipped.
type ObserverFuncs struct {
	Change func(key string)
	Error  func(err error)
}

func (o ObserverFuncs) OnChange(key string) {
	if o.Change != nil {
		o.Change(key)
	}
}

func (o ObserverFuncs) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

// observerSlot holds the single registered observer.
// Last registration wins; there is no fan-out.
type observerSlot struct {
	mu  sync.RWMutex
	obs Observer
}

func (s *observerSlot) register(o Observer) {
	s.mu.Lock()
	s.obs = o
	s.mu.Unlock()
}

func (s *observerSlot) notifyChange(key string) {
	s.mu.RLock()
	o := s.obs
	s.mu.RUnlock()
	if o != nil {
		o.OnChange(key)
	}
}

func (s *observerSlot) notifyError(err error) {
	s.mu.RLock()
	o := s.obs
	s.mu.RUnlock()
	if o != nil {
		o.OnError(err)
	}
}
