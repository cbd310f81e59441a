package keytree

// MergeMissing copies into dst every key of src that dst lacks, at any
// depth, and reports whether dst changed. Keys already present in dst are
// never overwritten; when both sides hold a mapping under the same key the
// merge recurses. New keys are appended in source order.
func MergeMissing(dst, src *Map) bool {
	changed := false
	src.Each(func(key string, value *Value) {
		existing, ok := dst.Get(key)
		if !ok {
			dst.Set(key, value.Clone())
			changed = true
			return
		}
		if existing.IsMapping() && value.IsMapping() {
			if MergeMissing(existing.Map, value.Map) {
				changed = true
			}
		}
	})
	return changed
}
