package hts

// Index maps codes to line items. When a code appears more than once the
// first occurrence wins. An Index is immutable after construction and safe
// for concurrent use.
type Index struct {
	byCode map[string]*LineItem
}

// NewIndex builds an Index over items. The index points into items, which
// must not be modified while the index is in use.
func NewIndex(items []LineItem) *Index {
	byCode := make(map[string]*LineItem, len(items))
	for i := range items {
		item := &items[i]
		if _, exists := byCode[item.Code]; exists {
			continue
		}
		byCode[item.Code] = item
	}
	return &Index{byCode: byCode}
}

// Lookup returns the first item with exactly the given code.
// A nil Index finds nothing.
func (idx *Index) Lookup(code string) (*LineItem, bool) {
	if idx == nil {
		return nil, false
	}
	item, ok := idx.byCode[code]
	return item, ok
}

// Contains reports whether an item with the given code exists.
func (idx *Index) Contains(code string) bool {
	_, ok := idx.Lookup(code)
	return ok
}

// Len returns the number of distinct codes in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byCode)
}
