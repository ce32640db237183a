// Package credentials supplies the token and base URL used to reach the
// directory service and notifies listeners when they change.
package credentials

import (
	"sync"

	"directory-enricher/internal/directory/client"
)

// Provider holds the current directory credentials. The cache registers
// an OnChange listener so a credential change invalidates cached state.
type Provider struct {
	mu        sync.RWMutex
	creds     client.Credentials
	listeners []func()
}

// NewProvider creates a provider seeded with initial credentials,
// typically from configuration.
func NewProvider(initial client.Credentials) *Provider {
	return &Provider{creds: initial}
}

// Current returns the credentials to attach to the next request.
func (p *Provider) Current() client.Credentials {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.creds
}

// Configured reports whether both a token and a base URL are present.
func (p *Provider) Configured() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.creds.Token != "" && p.creds.BaseURL != ""
}

// Set replaces the credentials. Listeners fire only on an actual change,
// outside the lock.
func (p *Provider) Set(creds client.Credentials) {
	p.mu.Lock()
	changed := p.creds != creds
	p.creds = creds
	listeners := p.listeners
	p.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn()
	}
}

// OnChange registers a listener invoked after every credential change.
func (p *Provider) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}
