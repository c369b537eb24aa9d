package hashtable

// Validate exposes the invariant check to the external test package.
func (t *Table[K, V]) Validate() error {
	return t.validate()
}
