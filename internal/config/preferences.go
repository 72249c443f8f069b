package config

import "sync"

// Preferences holds the live preference flags. Reads may come from any
// goroutine while the watcher swaps in reloaded values.
type Preferences struct {
	mu       sync.RWMutex
	settings PreferenceSettings
}

func NewPreferences(s PreferenceSettings) *Preferences {
	return &Preferences{settings: s}
}

// Set replaces all flags at once
func (p *Preferences) Set(s PreferenceSettings) {
	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()
}

// Settings returns a copy of the current flags
func (p *Preferences) Settings() PreferenceSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// AutoHideAdvanced reports whether file and repo fields collapse after a search
func (p *Preferences) AutoHideAdvanced() bool {
	return p.Settings().AutoHideAdvanced
}

// IgnoreCase reports whether searches are case-insensitive unless asked otherwise
func (p *Preferences) IgnoreCase() bool {
	return p.Settings().IgnoreCase
}
