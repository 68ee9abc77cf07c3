package toroid

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Catalog files extend the built-in core database with additional cores. The
// format is line-oriented and keyword-driven:
//
//	-- amidon large frames
//	core T94   od 23.9  id 14.2  height 7.9
//	core T130  od 33.0  id 19.8  height 11.1
//
// Keywords are case-insensitive; "--" starts a comment to end of line.

var catalogLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},
	{Name: "KwCore", Pattern: `(?i)\bcore\b`},
	{Name: "KwOD", Pattern: `(?i)\bod\b`},
	{Name: "KwID", Pattern: `(?i)\bid\b`},
	{Name: "KwHeight", Pattern: `(?i)\bheight\b`},
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9_-]*`},
})

type catalogFile struct {
	Entries []catalogEntry `parser:"@@*"`
}

type catalogEntry struct {
	Name     string  `parser:"KwCore @(Ident | Number)"`
	ODMM     float64 `parser:"KwOD @Number"`
	IDMM     float64 `parser:"KwID @Number"`
	HeightMM float64 `parser:"KwHeight @Number"`
}

var catalogParser = participle.MustBuild[catalogFile](
	participle.Lexer(catalogLexer),
	participle.Elide("Comment", "Whitespace"),
)

// LoadCatalog parses a catalog stream and adds its cores to the database.
// Parsed cores resolve through the same alias rules as built-in ones.
func (db *Database) LoadCatalog(r io.Reader, name string) error {
	file, err := catalogParser.Parse(name, r)
	if err != nil {
		return fmt.Errorf("toroid: parsing catalog %s: %w", name, err)
	}
	for _, entry := range file.Entries {
		core := CoreSpec{
			Name:     normalize(entry.Name),
			ODMM:     entry.ODMM,
			IDMM:     entry.IDMM,
			HeightMM: entry.HeightMM,
		}
		if err := db.Add(core); err != nil {
			return fmt.Errorf("toroid: catalog %s: %w", name, err)
		}
	}
	return nil
}

// LoadCatalogFile opens and parses a catalog file by path.
func (db *Database) LoadCatalogFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("toroid: opening catalog: %w", err)
	}
	defer f.Close()
	return db.LoadCatalog(f, path)
}
