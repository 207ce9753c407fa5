package table

// Option is one entry of the column selector.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Selection is what the column selector receives after an upload event.
type Selection struct {
	Options []Option          `json:"options"`
	Value   *string           `json:"value"`
	Style   map[string]string `json:"style"`
}

// SelectionFor lists the table's columns with the first one chosen. A nil
// table yields an empty, hidden selector.
func SelectionFor(t *Table) Selection {
	names := t.Names()
	if len(names) == 0 {
		return Selection{Options: []Option{}, Style: map[string]string{"display": "none"}}
	}
	opts := make([]Option, len(names))
	for i, n := range names {
		opts[i] = Option{Label: n, Value: n}
	}
	first := names[0]
	return Selection{Options: opts, Value: &first, Style: map[string]string{"display": "block"}}
}
