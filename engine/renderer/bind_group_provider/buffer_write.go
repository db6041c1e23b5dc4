package bind_group_provider

// BufferWrite is one queued upload into the buffer a provider holds at a binding.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Pending drops writes whose target buffer has not been created yet and
// coalesces repeated writes to the same provider, binding and offset, keeping the last.
//
// Parameters:
//   - writes: queued writes in submission order
//
// Returns:
//   - []BufferWrite: the writes to submit, first-seen order preserved
func Pending(writes []BufferWrite) []BufferWrite {
	type key struct {
		p       BindGroupProvider
		binding int
		offset  uint64
	}
	index := make(map[key]int, len(writes))
	out := make([]BufferWrite, 0, len(writes))
	for _, w := range writes {
		if w.Provider == nil || len(w.Data) == 0 || w.Provider.Buffer(w.Binding) == nil {
			continue
		}
		k := key{w.Provider, w.Binding, w.Offset}
		if i, ok := index[k]; ok {
			out[i] = w
			continue
		}
		index[k] = len(out)
		out = append(out, w)
	}
	return out
}
