package classes

import "fmt"

// Key identifies a class display name. Level is the archetype (deck) id and
// ClassID the class id, matching how the live name table is keyed.
type Key struct {
	Level   int
	ClassID int
}

// Entry is one row of the class name table.
type Entry struct {
	Level   int
	ClassID int
	Name    string
}

// Resolver maps (level, class id) pairs to display names.
// It is built once at startup and is read-only afterwards.
type Resolver struct {
	names map[Key]string
}

// NewResolver builds a resolver from table entries. Later duplicates win.
func NewResolver(entries []Entry) *Resolver {
	names := make(map[Key]string, len(entries))
	for _, e := range entries {
		names[Key{Level: e.Level, ClassID: e.ClassID}] = e.Name
	}
	return &Resolver{names: names}
}

// Resolve returns the display name for the pair, or a placeholder embedding
// classID when the pair is not in the table.
func (r *Resolver) Resolve(level, classID int) string {
	if r != nil {
		if name, ok := r.names[Key{Level: level, ClassID: classID}]; ok {
			return name
		}
	}
	return Placeholder(classID)
}

// Len returns the number of names in the table.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Placeholder is the name used for ids missing from the table.
func Placeholder(classID int) string {
	return fmt.Sprintf("Unknown%d", classID)
}
