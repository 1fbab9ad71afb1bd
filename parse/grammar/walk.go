package grammar

// Children returns the elements e delegates to.
func Children(e Element) []Element {
	var out []Element
	add := func(es ...Element) {
		for _, c := range es {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	switch v := e.(type) {
	case *Group:
		add(v.Members...)
		add(v.Default)
	case *Concatenation:
		add(v.Elements...)
	case *Repeat:
		add(v.Element)
	case *Composite:
		add(v.Element)
	case *KeyValue:
		add(v.Key, v.Value)
	case *Convert:
		add(v.Element)
	}
	return out
}

// Walk visits every element reachable from root once, depth first. Cycles
// are followed only the first time. Returning false from fn skips the
// element's children.
func Walk(root Element, fn func(Element) bool) {
	seen := make(map[Element]bool)
	var visit func(Element)
	visit = func(e Element) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true
		if !fn(e) {
			return
		}
		for _, c := range Children(e) {
			visit(c)
		}
	}
	visit(root)
}
