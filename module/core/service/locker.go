package service

import "sync"

// AssetLocker is a keyed mutex. Entries are dropped once no goroutine holds
// or waits on them.
type AssetLocker struct {
	mu    sync.Mutex
	locks map[string]*assetLock
}

type assetLock struct {
	mu   sync.Mutex
	refs int
}

func NewAssetLocker() *AssetLocker {
	return &AssetLocker{locks: make(map[string]*assetLock)}
}

// Lock blocks until the caller owns assetID and returns the release func.
func (l *AssetLocker) Lock(assetID string) func() {
	l.mu.Lock()
	al, ok := l.locks[assetID]
	if !ok {
		al = &assetLock{}
		l.locks[assetID] = al
	}
	al.refs++
	l.mu.Unlock()

	al.mu.Lock()
	return func() {
		al.mu.Unlock()

		l.mu.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.locks, assetID)
		}
		l.mu.Unlock()
	}
}
