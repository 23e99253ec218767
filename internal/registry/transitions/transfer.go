package transitions

import (
	"time"

	"mhregistry/internal/registry/catalog"
	"mhregistry/internal/registry/groups"
	"mhregistry/internal/registry/models"
)

// BuildTransfer constructs a transfer change registration. Added owner groups
// continue the chain's group id sequence; deleted groups are superseded
// wherever they live on the chain, with death metadata stamped for the death
// transfer variants.
func BuildTransfer(
	agg *models.Aggregate,
	in *models.TransitionInput,
	actor Actor,
	now time.Time,
) (*models.Transition, error) {
	regType := in.RegistrationType
	if regType == "" {
		regType = models.RegTypeTransferSale
	}
	rctx := catalog.ResolveContext{
		Override:             in.DocumentType,
		TransferDocumentType: in.TransferDocumentType,
	}
	reg, err := newChange(agg.Base, in, actor, now, regType, rctx)
	if err != nil {
		return nil, err
	}
	supersessions, err := groups.Supersede(agg, in.DeleteOwnerGroups, reg.ID, regType)
	if err != nil {
		return nil, err
	}
	if len(in.AddOwnerGroups) > 0 {
		added, err := groups.Append(in.AddOwnerGroups, agg.GroupCount())
		if err != nil {
			return nil, err
		}
		groups.NormalizeCommonInterest(added, false)
		reg.OwnerGroups = added
	}
	return &models.Transition{
		Registration: reg,
		Mutations:    models.Mutations{GroupSupersessions: supersessions},
	}, nil
}
