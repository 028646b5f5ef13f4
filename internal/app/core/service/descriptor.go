package service

// Layer describes where a component sits in the funding ledger. The gate and
// registry are pure domain components; the ledger additionally talks to the
// custody backend.
type Layer string

const (
	LayerDomain  Layer = "domain"
	LayerCustody Layer = "custody"
)

// Descriptor advertises a service's placement and capabilities. It is optional
// and does not change runtime behavior, but allows orchestration layers and
// documentation to reason about modules consistently.
type Descriptor struct {
	Name         string
	Domain       string
	Layer        Layer
	Capabilities []string
}
