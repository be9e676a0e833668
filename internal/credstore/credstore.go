// Package credstore provides the credential store consumed by the restore
// protocol: credentials are keyed by remote host name and are never embedded
// in mapping records or generated scripts.
package credstore

import (
	"strings"
	"sync"
)

// Credential holds a username and secret for one remote host.
type Credential struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// Store is the credential store capability. Implementations must tolerate
// unknown hosts (Get returns found=false, not an error).
type Store interface {
	Get(host string) (Credential, bool, error)
	Put(host string, cred Credential) error
}

// NormalizeHost canonicalizes a host key (trimmed, lower-cased).
func NormalizeHost(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}

// Memory is an in-memory Store used in tests and when the on-disk store is
// disabled or unavailable.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Credential
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Credential)}
}

// Get returns the credential cached for host, if any.
func (m *Memory) Get(host string) (Credential, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.entries[NormalizeHost(host)]
	return cred, ok, nil
}

// Put caches a credential for host.
func (m *Memory) Put(host string, cred Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[NormalizeHost(host)] = cred
	return nil
}

// Len reports the number of cached credentials.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
