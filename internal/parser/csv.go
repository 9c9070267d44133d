package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/numref/internal/doctree"
	"github.com/dgallion1/numref/internal/macro"
)

// CSVParser handles CSV files. The whole file becomes one captioned table
// figure whose id is the file's base name.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	name := trimExt(filename, ".csv")
	tree := doctree.New(name)
	if len(records) == 0 {
		return tree, nil
	}

	table := tree.NewNode(doctree.Node{Role: doctree.RoleTable})
	for _, record := range records {
		row := tree.NewNode(doctree.Node{Role: doctree.RoleTableRow})
		for _, cell := range record {
			tree.Append(row, tree.NewNode(doctree.Node{Role: doctree.RoleTableCell}, macro.Inline(tree, cell)...))
		}
		tree.Append(table, row)
	}

	caption := tree.NewNode(doctree.Node{Role: doctree.RoleFigureCaption}, doctree.Tokenize(tree, name)...)
	tree.Append(tree.Root(), tree.NewNode(doctree.Node{Role: doctree.RoleFigure, ID: name}, table, caption))
	return tree, nil
}
