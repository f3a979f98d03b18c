// Package consensus reconciles the MLST-based and antigen-based serovar
// predictions for a sample into one call.
package consensus

import (
	"github.com/carbocation/serovar/antigen"
	"github.com/carbocation/serovar/mlst2serovar"
)

// NotAvailable is reported when neither method predicted a serovar.
const NotAvailable = "n/a"

// Call is the final serovar for a sample. Uncertain is false only when both
// methods agree.
type Call struct {
	Serovar   string
	Uncertain bool
}

// String marks uncertain calls with a trailing asterisk.
func (c Call) String() string {
	if c.Uncertain {
		return c.Serovar + "*"
	}
	return c.Serovar
}

// Resolve applies the first matching rule:
//
//	MLST call, antigen agrees      -> MLST call
//	MLST call, antigen disagrees   -> antigen candidates, uncertain
//	no MLST call, antigen call     -> antigen candidates, uncertain
//	MLST call, no antigen call     -> MLST call, uncertain
//	neither                        -> NotAvailable, uncertain
func Resolve(pred mlst2serovar.PredictedResult, prof antigen.Profile) Call {
	switch {
	case pred.HasResult() && !prof.Empty():
		if prof.HasSerovar(pred.Result) {
			return Call{Serovar: pred.Result}
		}
		return Call{Serovar: prof.SerovarString(), Uncertain: true}
	case !prof.Empty():
		return Call{Serovar: prof.SerovarString(), Uncertain: true}
	case pred.HasResult():
		return Call{Serovar: pred.Result, Uncertain: true}
	}

	return Call{Serovar: NotAvailable, Uncertain: true}
}
