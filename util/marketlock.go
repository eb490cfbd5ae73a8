package util

import "sync"

// marketLocks serializes state transitions per market. Operations against
// different markets stay independent; two trades (or a trade and a resolve)
// against the same market must observe read-validate-commit as one atomic
// step.
var marketLocks sync.Map // map[uint]*sync.Mutex

// LockMarket acquires the mutex for one market and returns its unlock
// function. Hold it only for the atomic step; release on every exit path.
func LockMarket(marketID uint) func() {
	mu, _ := marketLocks.LoadOrStore(marketID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
