package state

import "sync"

// Token marks one navigation epoch for a key. Loaders capture the token when
// they start and present it with every write; a token from a superseded
// navigation silently loses.
type Token struct {
	key   string
	epoch uint64
}

// Key returns the entity key the token was issued for.
func (t Token) Key() string { return t.key }

// Guard issues monotonically increasing load epochs per entity key.
// The zero value is ready to use.
type Guard struct {
	mu     sync.Mutex
	epochs map[string]uint64
}

// Begin starts a new epoch for key and returns its token. Any token issued
// earlier for the same key is invalidated synchronously.
func (g *Guard) Begin(key string) Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.epochs == nil {
		g.epochs = make(map[string]uint64)
	}
	g.epochs[key]++
	return Token{key: key, epoch: g.epochs[key]}
}

// Current reports whether no later Begin has been issued for the token's key.
// A zero token is never current.
func (g *Guard) Current(tok Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return tok.epoch != 0 && g.epochs[tok.key] == tok.epoch
}
