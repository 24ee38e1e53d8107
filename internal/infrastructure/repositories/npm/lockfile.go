package npm

import "strings"

const nodeModulesPrefix = "node_modules/"

// Lockfile is a parsed package-lock.json.
type Lockfile struct {
	Root *Node
}

// ParseLockfile parses the lockfile content.
func ParseLockfile(content string) (*Lockfile, error) {
	root, err := Parse(content)
	if err != nil {
		return nil, err
	}
	return &Lockfile{Root: root}, nil
}

// Version returns lockfileVersion, or 0 when absent.
func (l *Lockfile) Version() int {
	version, _ := l.Root.Get("lockfileVersion").Int()
	return version
}

// LockedVersion returns the version installed at the top level of node_modules for name.
// Version 2/3 lockfiles record it under packages, version 1 under dependencies.
func (l *Lockfile) LockedVersion(name string) (string, bool) {
	if entry := l.Root.Get("packages").Get(nodeModulesPrefix + name); entry != nil {
		if version, ok := entry.Get("version").Str(); ok && version != "" {
			return version, true
		}
	}
	if entry := l.Root.Get("dependencies").Get(name); entry != nil {
		if version, ok := entry.Get("version").Str(); ok && version != "" {
			return version, true
		}
	}
	return "", false
}

// RootPackage returns the entry describing the project itself (packages[""]).
func (l *Lockfile) RootPackage() *Node {
	return l.Root.Get("packages").Get("")
}

// EngineRanges returns every engines.<engine> range declared by locked
// dependencies, ignoring the root package and the legacy array form.
func (l *Lockfile) EngineRanges(engine string) []string {
	packages := l.Root.Get("packages")
	if !packages.IsObject() {
		return nil
	}
	var ranges []string
	for _, member := range packages.Members {
		if member.Key == "" || !strings.Contains(member.Key, nodeModulesPrefix) {
			continue
		}
		if value, ok := member.Value.Get("engines").Get(engine).Str(); ok && strings.TrimSpace(value) != "" {
			ranges = append(ranges, value)
		}
	}
	return ranges
}
