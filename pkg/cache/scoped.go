package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This keeps entries from different NSP servers (or different connection
// profiles pointed at the same cache) from colliding.
//
// Example usage:
//
//	// Per-profile keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "profile:lab:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// FetchKey generates a prefixed key for a fetched raw topology.
func (k *ScopedKeyer) FetchKey(opts FetchKeyOpts) string {
	return k.prefix + k.inner.FetchKey(opts)
}

// LayoutKey generates a prefixed key for a computed layout.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}
