package grid

import "strings"

// Node is an explicit object-or-scalar tree built from dotted field paths.
// An object node has children (in first-seen order); a scalar node holds a value.
type Node struct {
	value    string
	children map[string]*Node
	keys     []string
}

// NewObject returns an empty object node.
func NewObject() *Node { return &Node{children: map[string]*Node{}} }

// Scalar returns a leaf node.
func Scalar(v string) *Node { return &Node{value: v} }

func (n *Node) IsObject() bool { return n != nil && n.children != nil }

// Value is the scalar value, "" for objects.
func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	return n.value
}

// Keys lists child names in insertion order.
func (n *Node) Keys() []string {
	if !n.IsObject() {
		return nil
	}
	return append([]string(nil), n.keys...)
}

func (n *Node) Child(name string) (*Node, bool) {
	if !n.IsObject() {
		return nil, false
	}
	c, ok := n.children[name]
	return c, ok
}

// Set assigns value at path, creating intermediate objects on demand. A scalar
// sitting where an intermediate object is needed is replaced by an object.
// An empty path is a no-op.
func (n *Node) Set(path []string, value string) {
	if len(path) == 0 || !n.IsObject() {
		return
	}
	cur := n
	for _, part := range path[:len(path)-1] {
		next, ok := cur.children[part]
		if !ok || !next.IsObject() {
			next = NewObject()
			cur.put(part, next)
		}
		cur = next
	}
	cur.put(path[len(path)-1], Scalar(value))
}

func (n *Node) put(name string, child *Node) {
	if _, ok := n.children[name]; !ok {
		n.keys = append(n.keys, name)
	}
	n.children[name] = child
}

// Lookup resolves a dotted path to a scalar value.
func (n *Node) Lookup(path string) (string, bool) {
	cur := n
	for _, part := range strings.Split(path, ".") {
		next, ok := cur.Child(part)
		if !ok {
			return "", false
		}
		cur = next
	}
	if cur.IsObject() {
		return "", false
	}
	return cur.value, true
}

// Get returns Lookup(path) or "" when absent.
func (n *Node) Get(path string) string {
	v, _ := n.Lookup(path)
	return v
}

// Map converts the tree into nested map[string]any / string values.
func (n *Node) Map() map[string]any {
	if !n.IsObject() {
		return nil
	}
	out := make(map[string]any, len(n.keys))
	for _, k := range n.keys {
		c := n.children[k]
		if c.IsObject() {
			out[k] = c.Map()
		} else {
			out[k] = c.value
		}
	}
	return out
}
