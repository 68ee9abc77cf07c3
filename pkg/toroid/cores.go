package toroid

import (
	"fmt"
	"sort"
	"strings"
)

// Database maps canonical core names to their dimensions. The zero value is
// unusable; construct with NewDatabase.
type Database struct {
	cores map[string]CoreSpec
}

// builtinCores is the standard powdered-iron toroid range the generator has
// been validated against.
var builtinCores = []CoreSpec{
	{Name: "T37", ODMM: 9.5, IDMM: 5.2, HeightMM: 3.25},
	{Name: "T50", ODMM: 12.7, IDMM: 7.7, HeightMM: 4.8},
	{Name: "T68", ODMM: 17.5, IDMM: 9.4, HeightMM: 4.8},
	{Name: "T200", ODMM: 50.8, IDMM: 31.8, HeightMM: 14.0},
}

// NewDatabase returns a database preloaded with the built-in core range.
func NewDatabase() *Database {
	db := &Database{cores: make(map[string]CoreSpec, len(builtinCores))}
	for _, core := range builtinCores {
		db.cores[core.Name] = core
	}
	return db
}

// Add registers a core under its canonical name, replacing any existing entry
// with the same name. The core must pass Validate.
func (db *Database) Add(core CoreSpec) error {
	if err := core.Validate(); err != nil {
		return err
	}
	db.cores[normalize(core.Name)] = core
	return nil
}

// normalize reduces an identifier to its canonical database key: uppercase,
// separators stripped, the ferrite "F" prefix dropped. "T-68", "t68" and
// "FT68" all normalize to "T68".
func normalize(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "")
	n = strings.ReplaceAll(n, "_", "")
	n = strings.ReplaceAll(n, " ", "")
	if strings.HasPrefix(n, "FT") {
		n = n[1:]
	}
	return n
}

// Lookup resolves a free-form identifier to a core spec.
func (db *Database) Lookup(name string) (CoreSpec, error) {
	core, ok := db.cores[normalize(name)]
	if !ok {
		return CoreSpec{}, fmt.Errorf("%w: %q", ErrUnknownCore, name)
	}
	return core, nil
}

// List returns all known cores sorted by ID then name, for the cores table
// printed by the CLI.
func (db *Database) List() []CoreSpec {
	cores := make([]CoreSpec, 0, len(db.cores))
	for _, core := range db.cores {
		cores = append(cores, core)
	}
	sort.Slice(cores, func(i, j int) bool {
		if cores[i].IDMM != cores[j].IDMM {
			return cores[i].IDMM < cores[j].IDMM
		}
		return cores[i].Name < cores[j].Name
	})
	return cores
}
