package tile

// TunnelBridgeOtherEnd walks from the head t along its direction to the
// matching head and returns it with the number of tiles in between.
func (m *Map) TunnelBridgeOtherEnd(t Index) (Index, uint, bool) {
	head, ok := m.TunnelBridge(t)
	if !ok {
		return InvalidIndex, 0, false
	}
	want := head.Dir.Reverse()
	cur := t
	for n := uint(0); ; n++ {
		next, ok := m.AddDiagDir(cur, head.Dir)
		if !ok {
			return InvalidIndex, 0, false
		}
		if tb, ok := m.TunnelBridge(next); ok && tb.Dir == want && tb.Bridge == head.Bridge && tb.Transport == head.Transport {
			return next, n, true
		}
		cur = next
	}
}
