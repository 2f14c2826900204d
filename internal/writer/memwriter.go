package writer

// MemWriter captures artifacts in memory, keyed by name.
type MemWriter struct {
	Files map[string][]byte
	// Order lists names in the order they were written.
	Order []string
}

var _ Sink = (*MemWriter)(nil)

// WriteFile stores a copy of data under name.
func (w *MemWriter) WriteFile(name string, data []byte) error {
	if w.Files == nil {
		w.Files = make(map[string][]byte)
	}
	if _, ok := w.Files[name]; !ok {
		w.Order = append(w.Order, name)
	}
	w.Files[name] = append([]byte(nil), data...)
	return nil
}
