// Package session maps live connections to logged-in users. It is the only
// server-side state coupling a transport connection to a domain actor.
package session

import "github.com/dmitrijs2005/cryptowallet/internal/wallet"

// Registry binds connection IDs (assigned by the reactor) to at most one
// logged-in user each. A user may be bound by more than one connection; all
// bindings share the same in-memory User, which is safe because only the
// event-loop goroutine touches it.
type Registry struct {
	users map[uint64]*wallet.User
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[uint64]*wallet.User)}
}

// Bind associates a connection with a logged-in user, replacing any previous
// binding for that connection.
func (r *Registry) Bind(connID uint64, user *wallet.User) {
	r.users[connID] = user
}

// Lookup returns the user bound to the connection, if any.
func (r *Registry) Lookup(connID uint64) (*wallet.User, bool) {
	u, ok := r.users[connID]
	return u, ok
}

// Unbind clears the binding for a connection. Unbinding an unknown
// connection is a no-op.
func (r *Registry) Unbind(connID uint64) {
	delete(r.users, connID)
}

// Len reports the number of bound sessions.
func (r *Registry) Len() int {
	return len(r.users)
}
