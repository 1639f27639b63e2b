// Package rename implements the one-shot Rename Map from spec.md §3: it
// assigns a disambiguated target identifier whenever a local would shadow
// a module-level symbol, a reserved keyword, or a sibling method. Once a
// source name has been mapped to a target name, the mapping never changes
// — "Writes are one-shot; the original name never reappears after
// rename."
package rename

import "fmt"

// zigKeywords is the set of reserved words the target language forbids as
// identifiers; any source name colliding with one of these is renamed.
var zigKeywords = map[string]bool{
	"align": true, "allowzero": true, "and": true, "anyframe": true, "anytype": true,
	"asm": true, "async": true, "await": true, "break": true, "callconv": true,
	"catch": true, "comptime": true, "const": true, "continue": true, "defer": true,
	"else": true, "enum": true, "errdefer": true, "error": true, "export": true,
	"extern": true, "fn": true, "for": true, "if": true, "inline": true,
	"noalias": true, "noinline": true, "nosuspend": true, "opaque": true, "or": true,
	"orelse": true, "packed": true, "pub": true, "resume": true, "return": true,
	"linksection": true, "struct": true, "suspend": true, "switch": true, "test": true,
	"threadlocal": true, "try": true, "union": true, "unreachable": true, "usingnamespace": true,
	"var": true, "volatile": true, "while": true, "self": true, "type": true,
}

// Map tracks source-name -> target-name assignments for one module
// compilation and the disambiguator counters needed to resolve collisions
// (spec.md §7 category 3). forward holds the module-level symbol tier
// (top-level function/class names, fields, methods) spec.md describes as
// a single global namespace; local holds one independent bucket per
// scope (an enclosing function, or scope.Module for module-level/main-body code),
// since two different functions binding the same source spelling must be
// disambiguated against the *current* set of used names independently,
// not share one memoized target across every scope (see Resolve's and
// ResolveLocal's doc comments).
type Map struct {
	forward map[string]string
	local   map[any]map[string]string
	used    map[string]bool
	counter map[string]int
}

// New creates an empty rename map.
func New() *Map {
	return &Map{
		forward: make(map[string]string),
		local:   make(map[any]map[string]string),
		used:    make(map[string]bool),
		counter: make(map[string]int),
	}
}

// IsReservedOrKeyword reports whether name needs renaming on its own
// merits (a Zig keyword), independent of any collision with another
// source name.
func IsReservedOrKeyword(name string) bool {
	return zigKeywords[name]
}

// Resolve returns the target identifier for sourceName at the
// module-level symbol tier (top-level function/class names, struct
// fields, methods), computing and recording it on first call.
// candidates, in priority order, are the preferred renamings to try
// before falling back to a numeric disambiguator (e.g. a reserved
// keyword tries "<name>_" first).
//
// This tier is a single flat namespace shared across every caller on
// purpose: struct fields and methods are namespaced per Zig type
// regardless of what they're called, so two classes' same-named field or
// method resolving to the same cached spelling is harmless. Local
// variables must NOT go through this method — see ResolveLocal.
func (m *Map) Resolve(sourceName string, candidates ...string) string {
	if target, ok := m.forward[sourceName]; ok {
		return target
	}

	target := m.resolve(sourceName, candidates)
	m.forward[sourceName] = target
	return target
}

// ResolveLocal is Resolve's counterpart for names local to a function
// body: parameters, loop targets, exception/with-statement bindings, and
// plain local assignments. scope identifies the enclosing function — the
// emitter and siggen both pass a scope.ID (internal/scope), the module
// scope for module-level statements (which all end up inside the single
// synthesized `main` body and so share one scope).
//
// Each scope gets its own cache bucket, so the same source spelling
// bound in two different functions is independently checked against the
// current `used` set rather than short-circuiting on a single
// module-wide memoized target — the bug a flat cache has: a module-level
// function named "second" reserves target "second", but a *different*
// function's local variable also named "second" must still collide with
// that reservation and be disambiguated, not silently reuse "second"
// because some other scope already cached that exact spelling.
func (m *Map) ResolveLocal(scope any, sourceName string, candidates ...string) string {
	bucket, ok := m.local[scope]
	if !ok {
		bucket = make(map[string]string)
		m.local[scope] = bucket
	}
	if target, ok := bucket[sourceName]; ok {
		return target
	}

	target := m.resolve(sourceName, candidates)
	bucket[sourceName] = target
	return target
}

// resolve is Resolve/ResolveLocal's shared collision-check-and-record
// step, once the caller has established that sourceName hasn't already
// been cached in its own tier/scope.
func (m *Map) resolve(sourceName string, candidates []string) string {
	target := sourceName
	if IsReservedOrKeyword(sourceName) || m.used[sourceName] {
		target = ""
		for _, c := range candidates {
			if !m.used[c] && !IsReservedOrKeyword(c) {
				target = c
				break
			}
		}
		if target == "" {
			target = m.disambiguate(sourceName)
		}
	}
	m.used[target] = true
	return target
}

// disambiguate appends a monotonically increasing suffix until it finds
// an unused, non-keyword identifier, per spec.md §7 category 3.
func (m *Map) disambiguate(base string) string {
	for {
		m.counter[base]++
		candidate := fmt.Sprintf("%s_%d", base, m.counter[base])
		if !m.used[candidate] && !IsReservedOrKeyword(candidate) {
			return candidate
		}
	}
}

// Lookup returns the previously resolved module-level-tier target name
// for sourceName, if any, without allocating a new one.
func (m *Map) Lookup(sourceName string) (string, bool) {
	target, ok := m.forward[sourceName]
	return target, ok
}

// LookupLocal is Lookup's counterpart for the scoped local tier (see
// ResolveLocal): it returns the previously resolved target name for
// sourceName within scope, without allocating a new one.
func (m *Map) LookupLocal(scope any, sourceName string) (string, bool) {
	bucket, ok := m.local[scope]
	if !ok {
		return "", false
	}
	target, ok := bucket[sourceName]
	return target, ok
}

// Reserve marks target as already in use (e.g. a module-level symbol or a
// sibling method name) so a later Resolve call is forced to disambiguate
// around it.
func (m *Map) Reserve(target string) {
	m.used[target] = true
}
