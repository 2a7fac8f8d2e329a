package spirv

// ForEachReachableFunction visits every function reachable from the
// module's entry points, each exactly once, in breadth-first order:
// entry-point roots in declaration order, then callees in the order
// their OpFunctionCall sites appear. The visitor reports whether it
// modified the function; the fold of those results is returned.
//
// Visiting stops at the first visitor error.
func (m *Module) ForEachReachableFunction(visit func(*Function) (bool, error)) (bool, error) {
	visited := make(map[ID]bool, len(m.Functions))
	queue := make([]*Function, 0, len(m.Functions))

	for _, entry := range m.EntryPoints {
		f := m.FunctionByID(entry.Function)
		if f == nil || visited[f.ID()] {
			continue
		}
		visited[f.ID()] = true
		queue = append(queue, f)
	}

	modified := false
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		changed, err := visit(f)
		if err != nil {
			return modified, err
		}
		modified = modified || changed

		for _, callee := range f.callees() {
			if visited[callee] {
				continue
			}
			target := m.FunctionByID(callee)
			if target == nil {
				continue
			}
			visited[callee] = true
			queue = append(queue, target)
		}
	}
	return modified, nil
}

// callees returns the ids of functions called from f, in call-site
// order, with duplicates preserved.
func (f *Function) callees() []ID {
	var out []ID
	for _, b := range f.Blocks {
		for _, inst := range b.Body {
			// OpFunctionCall: result type, result id, function id, args...
			if inst.Opcode == OpFunctionCall && len(inst.Words) >= 3 {
				out = append(out, ID(inst.Words[2]))
			}
		}
	}
	return out
}
