package domain

// ComponentType names a layout element the page knows how to render
type ComponentType string

const (
	ComponentDiv         ComponentType = "div"
	ComponentHeading     ComponentType = "heading"
	ComponentGraph       ComponentType = "graph"
	ComponentDropdown    ComponentType = "dropdown"
	ComponentRangeSlider ComponentType = "range_slider"
	ComponentToggle      ComponentType = "toggle"
)

// Option is one choice in a dropdown
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Component is a node of the page layout tree
type Component struct {
	Type     ComponentType  `json:"type"`
	ID       string         `json:"id,omitempty"`
	Text     string         `json:"text,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Children []Component    `json:"children,omitempty"`
}

// Layout is the full page description
type Layout struct {
	Stage       string    `json:"stage"`
	Title       string    `json:"title"`
	Stylesheets []string  `json:"stylesheets"`
	Root        Component `json:"root"`
	Interactive bool      `json:"interactive"`
	Figure      *Figure   `json:"figure,omitempty"`
}

// Find returns the first component in the tree with the given ID
func (c Component) Find(id string) (Component, bool) {
	if c.ID == id {
		return c, true
	}
	for _, child := range c.Children {
		if found, ok := child.Find(id); ok {
			return found, true
		}
	}
	return Component{}, false
}

// Count returns the number of components of a type in the tree
func (c Component) Count(t ComponentType) int {
	n := 0
	if c.Type == t {
		n++
	}
	for _, child := range c.Children {
		n += child.Count(t)
	}
	return n
}
