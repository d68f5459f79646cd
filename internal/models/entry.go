// Package models defines the catalog domain types.
package models

import "time"

// FileMeta is what the storage layer knows about a file on disk.
type FileMeta struct {
	Path    string    `json:"path" yaml:"path"`
	Name    string    `json:"name" yaml:"name"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Entry is a catalogued file whose name decodes under the naming convention.
type Entry struct {
	Path      string    `json:"path" yaml:"path"`
	Name      string    `json:"name" yaml:"name"`
	Stem      string    `json:"stem" yaml:"stem"`
	Suffix    string    `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Tags      []string  `json:"tags" yaml:"tags"`
	Date      string    `json:"date,omitempty" yaml:"date,omitempty"` // YYYY-MM-DD
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Size      int64     `json:"size" yaml:"size"`
	ModTime   time.Time `json:"mod_time" yaml:"mod_time"`
	IndexedAt time.Time `json:"indexed_at" yaml:"indexed_at"`
}

// Unmanaged is a file whose name does not decode, with the reason.
type Unmanaged struct {
	Path    string    `json:"path" yaml:"path"`
	Name    string    `json:"name" yaml:"name"`
	Reason  string    `json:"reason" yaml:"reason"`
	Kind    string    `json:"kind" yaml:"kind"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// ChangeKind describes how a catalogued file changed.
type ChangeKind string

// Change kinds reported by the watcher and forwarded to event subscribers.
const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)
