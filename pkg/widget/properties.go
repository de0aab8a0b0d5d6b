package widget

// Option is a key/label entry of a select, multi-select or scale widget.
type Option struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Tooltip string `json:"tooltip,omitempty"`
	Order   int    `json:"order"`
	Color   string `json:"color,omitempty"` // scale only
}

// OrganigramNode is one node of an organigram widget's option tree.
type OrganigramNode struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Tooltip  string            `json:"tooltip,omitempty"`
	Order    int               `json:"order"`
	Children []*OrganigramNode `json:"children,omitempty"`
}

// MatrixRow is a row of a matrix widget. Matrix1D rows carry Cells,
// Matrix2D rows carry SubRows.
type MatrixRow struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Tooltip string   `json:"tooltip,omitempty"`
	Order   int      `json:"order"`
	Color   string   `json:"color,omitempty"`
	Cells   []Option `json:"cells,omitempty"`
	SubRows []Option `json:"subRows,omitempty"`
}

// MatrixColumn is a column of a Matrix2D widget.
type MatrixColumn struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Tooltip    string   `json:"tooltip,omitempty"`
	Order      int      `json:"order"`
	SubColumns []Option `json:"subColumns,omitempty"`
}

// Properties is the type specific configuration of a widget.
// Only the fields relevant to the widget's type are populated.
type Properties struct {
	Options      []Option        `json:"options,omitempty"`
	Organigram   *OrganigramNode `json:"organigram,omitempty"`
	Rows         []MatrixRow     `json:"rows,omitempty"`
	Columns      []MatrixColumn  `json:"columns,omitempty"`
	MinValue     *float64        `json:"minValue,omitempty"`
	MaxValue     *float64        `json:"maxValue,omitempty"`
	DefaultValue any             `json:"defaultValue,omitempty"`
	TargetType   Type            `json:"targetType,omitempty"` // CONDITIONAL wrapper only
}

// OptionList flattens the selectable keys of a widget into a key/label list.
// Organigram trees are walked depth first; matrix widgets contribute their
// rows. A nil receiver yields an empty list.
func (p *Properties) OptionList(t Type) []Option {
	if p == nil {
		return []Option{}
	}
	switch t {
	case TypeOrganigram:
		out := make([]Option, 0)
		p.Organigram.Walk(func(n *OrganigramNode) {
			out = append(out, Option{Key: n.Key, Label: n.Label, Tooltip: n.Tooltip, Order: n.Order})
		})
		return out
	case TypeMatrix1D, TypeMatrix2D:
		out := make([]Option, 0, len(p.Rows))
		for _, r := range p.Rows {
			out = append(out, Option{Key: r.Key, Label: r.Label, Tooltip: r.Tooltip, Order: r.Order, Color: r.Color})
		}
		return out
	default:
		if p.Options == nil {
			return []Option{}
		}
		out := make([]Option, len(p.Options))
		copy(out, p.Options)
		return out
	}
}

// OptionOrder returns the order of the option with the given key.
func (p *Properties) OptionOrder(key string) (int, bool) {
	if p == nil {
		return 0, false
	}
	for _, o := range p.Options {
		if o.Key == key {
			return o.Order, true
		}
	}
	return 0, false
}

// Walk visits n and all of its descendants depth first. Nil nodes are
// skipped.
func (n *OrganigramNode) Walk(visit func(*OrganigramNode)) {
	if n == nil {
		return
	}
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// Find returns the node with the given key in the subtree rooted at n.
func (n *OrganigramNode) Find(key string) *OrganigramNode {
	var found *OrganigramNode
	n.Walk(func(node *OrganigramNode) {
		if found == nil && node.Key == key {
			found = node
		}
	})
	return found
}

// Descendants returns the keys of n and every node below it.
func (n *OrganigramNode) Descendants() []string {
	var keys []string
	n.Walk(func(node *OrganigramNode) {
		keys = append(keys, node.Key)
	})
	return keys
}
