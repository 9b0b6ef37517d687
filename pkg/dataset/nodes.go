package dataset

// NodesToEdge maps the node pair (v, u) of an n-node graph to a flat edge index.
func NodesToEdge(v, u, n int) int {
	return v*n + u
}

// EdgeToNodes is the inverse of NodesToEdge.
func EdgeToNodes(e, n int) (v, u int) {
	return e / n, e % n
}
