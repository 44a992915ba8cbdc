// Package tags defines the event tag list and its lookup helpers.
package tags

// T is an ordered list of tags. Each tag is an ordered list of strings
// whose first element is the tag name.
type T [][]string

// First returns the first tag with the given name, or nil.
func (t T) First(name string) []string {
	for _, tag := range t {
		if len(tag) > 0 && tag[0] == name {
			return tag
		}
	}
	return nil
}

// FirstValue returns the second element of the first tag with the given
// name. A tag present without a value yields "" with ok true.
func (t T) FirstValue(name string) (v string, ok bool) {
	tag := t.First(name)
	if tag == nil {
		return "", false
	}
	if len(tag) > 1 {
		v = tag[1]
	}
	return v, true
}

// Values returns the second elements of every tag with the given name,
// skipping tags that have no value.
func (t T) Values(name string) (vs []string) {
	for _, tag := range t {
		if len(tag) > 1 && tag[0] == name {
			vs = append(vs, tag[1])
		}
	}
	return
}

// ContainsValue reports whether a tag with the given name carries the given
// value.
func (t T) ContainsValue(name, value string) bool {
	for _, tag := range t {
		if len(tag) > 1 && tag[0] == name && tag[1] == value {
			return true
		}
	}
	return false
}
