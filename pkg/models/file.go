package models

import (
	"time"
)

// ScriptKind classifies a file the scanner understands
type ScriptKind string

const (
	KindGroovy     ScriptKind = "groovy"     // *.gradle
	KindKotlin     ScriptKind = "kotlin"     // *.gradle.kts
	KindProperties ScriptKind = "properties" // gradle-wrapper.properties
	KindUnknown    ScriptKind = ""
)

// File represents a build file loaded for scanning
type File struct {
	Path         string     // Full file path
	RelativePath string     // Path relative to project root
	Name         string     // File name
	Kind         ScriptKind // Script kind derived from the name
	Size         int64      // File size in bytes
	ModTime      time.Time  // Modification time
	Content      []byte     // File content
}

// FileInfo contains basic file information without content
type FileInfo struct {
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Index        int // position in walk order
}
