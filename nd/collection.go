package nd

// Collection is an insertion-ordered mapping from dimension name to Axis.
// Axis names are unique within a collection; Set replaces an existing
// entry in place.
type Collection struct {
	names  []string
	byName map[string]*Axis
}

// NewCollection builds a collection from the given axes in order.
func NewCollection(axes ...*Axis) (*Collection, error) {
	c := &Collection{byName: make(map[string]*Axis, len(axes))}
	for _, ax := range axes {
		if err := c.Set(ax); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Set inserts ax under its dimension name, replacing any existing entry
// while keeping its position.
func (c *Collection) Set(ax *Axis) error {
	if ax == nil {
		return ErrNilAxis
	}
	if _, ok := c.byName[ax.name]; !ok {
		c.names = append(c.names, ax.name)
	}
	c.byName[ax.name] = ax
	return nil
}

// Get returns the axis stored under name.
func (c *Collection) Get(name string) (*Axis, error) {
	ax, ok := c.byName[name]
	if !ok {
		return nil, ErrAxisNotFound
	}
	return ax, nil
}

// IndexOf returns the ordinal position of name in insertion order.
func (c *Collection) IndexOf(name string) (int, error) {
	for i, n := range c.names {
		if n == name {
			return i, nil
		}
	}
	return 0, ErrAxisNotFound
}

// Delete removes the entry under name.
func (c *Collection) Delete(name string) error {
	if _, ok := c.byName[name]; !ok {
		return ErrAxisNotFound
	}
	delete(c.byName, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of axes.
func (c *Collection) Len() int { return len(c.names) }

// Names returns the dimension names in insertion order.
func (c *Collection) Names() []string {
	return append([]string(nil), c.names...)
}

// Coords returns the materialized coordinate vectors in insertion order,
// ready to assemble an Array's coords list.
func (c *Collection) Coords() [][]float64 {
	out := make([][]float64, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n].Values())
	}
	return out
}
