package repository

import "sync"

// keyLocker serializes read-modify-write cycles per store key. Every
// repository mutation runs under the lock of the key it rewrites, so two
// near-simultaneous operations on the same blob cannot lose updates.
type keyLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *keyLocker) forKey(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
