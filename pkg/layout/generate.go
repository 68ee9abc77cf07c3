package layout

import (
	"github.com/coilworks/fpcwind/pkg/fab"
	"github.com/coilworks/fpcwind/pkg/toroid"
	"github.com/coilworks/fpcwind/pkg/winding"
)

// Generate is the single entry point for host applications: resolve a core
// identifier, solve the winding configuration, and build the geometry plan.
// Errors pass through untouched so callers can match toroid.ErrUnknownCore,
// *toroid.InvalidRequestError, *winding.InfeasibleError, and *InvariantError.
func Generate(db *toroid.Database, coreName string, req toroid.Request, cons fab.Constraints) (*GeometryPlan, *winding.Plan, error) {
	core, err := db.Lookup(coreName)
	if err != nil {
		return nil, nil, err
	}
	plan, err := winding.Solve(core, req, cons)
	if err != nil {
		return nil, nil, err
	}
	geo, err := Build(plan, cons)
	if err != nil {
		return nil, nil, err
	}
	return geo, plan, nil
}
