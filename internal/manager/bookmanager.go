// Package manager owns the set of per-symbol order books and the locks
// that guard them, creating both lazily on first use.
package manager

import (
	"sync"

	"apexmatch/internal/book"
)

// BookManager hands out one *book.OrderBook and one *sync.RWMutex per
// symbol, creating them on first access. Using sync.Map with LoadOrStore
// keeps creation race-free without a manager-wide lock serializing every
// symbol's traffic through a single mutex.
type BookManager struct {
	books *sync.Map // symbol -> *book.OrderBook
	locks *sync.Map // symbol -> *sync.RWMutex
}

// New creates an empty book manager.
func New() *BookManager {
	return &BookManager{
		books: &sync.Map{},
		locks: &sync.Map{},
	}
}

// Get returns the order book and guarding lock for symbol, creating them
// if this is the first time symbol has been seen.
func (m *BookManager) Get(symbol string) (*book.OrderBook, *sync.RWMutex) {
	booksVal, _ := m.books.LoadOrStore(symbol, book.New(symbol))
	lockVal, _ := m.locks.LoadOrStore(symbol, &sync.RWMutex{})
	return booksVal.(*book.OrderBook), lockVal.(*sync.RWMutex)
}

// Symbols returns every symbol with a book created so far.
func (m *BookManager) Symbols() []string {
	var symbols []string
	m.books.Range(func(key, _ any) bool {
		symbols = append(symbols, key.(string))
		return true
	})
	return symbols
}

// Snapshots returns a book.Snapshot for every known symbol, each taken
// under that symbol's own read lock.
func (m *BookManager) Snapshots() []book.Snapshot {
	var snaps []book.Snapshot
	m.books.Range(func(key, value any) bool {
		symbol := key.(string)
		ob := value.(*book.OrderBook)
		_, lock := m.Get(symbol)
		lock.RLock()
		snaps = append(snaps, ob.Snapshot())
		lock.RUnlock()
		return true
	})
	return snaps
}
