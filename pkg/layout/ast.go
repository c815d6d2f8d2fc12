package layout

// File represents a complete .kpd layout file. A file may define several
// keypads; applications with one matrix just write one block.
type File struct {
	Keypads []*KeypadDef `@@*`
}

// KeypadDef is one keypad block.
// Example: keypad "panel" { rows 5 6 7 8 cols 9 10 11 keys { ... } }
type KeypadDef struct {
	Name   string   `KwKeypad @String LBrace`
	Fields []*Field `@@* RBrace`
}

// Field is one directive inside a keypad block.
type Field struct {
	Rows     []int `  KwRows @Integer+`
	Cols     []int `| KwCols @Integer+`
	Keys     *Keys `| @@`
	Debounce *int  `| KwDebounce @Integer`
	Hold     *int  `| KwHold @Integer`
	Settle   *int  `| KwSettle @Integer`
}

// Keys is the keymap body: one quoted string per matrix row, one rune per
// column.
type Keys struct {
	Rows []string `KwKeys LBrace @String+ RBrace`
}

// Find returns the keypad block with the given name, or nil.
func (f *File) Find(name string) *KeypadDef {
	for _, k := range f.Keypads {
		if k.Name == name {
			return k
		}
	}
	return nil
}
