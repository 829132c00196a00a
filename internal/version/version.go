// Package version хранит сведения о сборке, заполняемые через -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build — версия, коммит и дата сборки.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current возвращает сведения о сборке. Без -ldflags коммит и дата берутся из VCS-меток Go.
func Current() Build {
	b := Build{Version: version, Commit: commit, Date: date}
	if b.Commit != "unknown" {
		return b
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		b.fillFromVCS(info.Settings)
	}
	return b
}

func (b *Build) fillFromVCS(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
		case "vcs.time":
			b.Date = s.Value
		}
	}
}

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

func (b Build) String() string {
	return fmt.Sprintf("jourmarche version=%s commit=%s date=%s", b.Version, b.Commit, b.Date)
}

// String — строка для лога запуска.
func String() string { return Current().String() }
