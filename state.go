package qtypes

/*
State is one integer a superposed register can collapse to, weighted by how many times it was
requested. Its probability is Weight over the total weight of the wave function.
*/
type State struct {
	Value  uint64
	Weight int
}
