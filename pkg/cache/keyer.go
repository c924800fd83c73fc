package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data. Documents are hashed in their
// marshaled form, so two documents that encode identically share artifacts.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digestKey joins kind with the digest of the JSON array of parts.
// Marshaling ArtifactKeyOpts cannot fail, so the error is dropped.
func digestKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// ArtifactKeyOpts are the render options that change the artifact bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Detailed  bool    `json:"detailed"`
	Direction string  `json:"direction"`
	Scale     float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey is the key of a rendered artifact of the document with
	// content hash docHash.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds keys of the form artifact:<sha256>.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the document hash together with opts.
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return digestKey("artifact", docHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one redis without sharing entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means the
// default one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}
