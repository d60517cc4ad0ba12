// Package training holds helpers that operate on externally defined models.
package training

// Parameter is a trainable tensor whose gradient tracking can be toggled.
type Parameter interface {
	SetRequiresGrad(requiresGrad bool)
}

// ParameterHolder exposes the parameters of a network.
type ParameterHolder interface {
	Parameters() []Parameter
}

// SetRequiresGrad enables or disables gradient tracking on every parameter
// of every non-nil network in nets.
func SetRequiresGrad(nets []ParameterHolder, requiresGrad bool) {
	for _, net := range nets {
		if net == nil {
			continue
		}
		for _, p := range net.Parameters() {
			p.SetRequiresGrad(requiresGrad)
		}
	}
}

// Freeze disables gradient tracking on nets.
func Freeze(nets ...ParameterHolder) {
	SetRequiresGrad(nets, false)
}

// Unfreeze enables gradient tracking on nets.
func Unfreeze(nets ...ParameterHolder) {
	SetRequiresGrad(nets, true)
}
