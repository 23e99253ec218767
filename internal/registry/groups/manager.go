// Package groups manages the owner-group lifecycle: creation, supersession,
// and common-interest normalization. Groups are never edited in place; the
// chain stays an auditable history, so removing owners means marking the
// group PREVIOUS and recording which change registration did so.
package groups

import (
	"mhregistry/internal/registry/models"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

// CreateInitial builds the ACTIVE owner groups for a brand-new registration,
// numbered 1..N in payload order.
func CreateInitial(inputs []models.OwnerGroupInput) ([]*models.OwnerGroup, error) {
	if len(inputs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one owner group is required")
	}
	groups := make([]*models.OwnerGroup, 0, len(inputs))
	for i, in := range inputs {
		group, err := newGroup(in)
		if err != nil {
			return nil, err
		}
		group.GroupID = i + 1
		group.GroupSequenceNumber = i + 1
		groups = append(groups, group)
	}
	return groups, nil
}

// Append builds the groups a change registration adds. New group ids continue
// from existingCount so ids are never reused within the business key's
// lifetime. The sequence number is 1 for groups without a fractional
// interest, otherwise the payload-declared group identifier.
func Append(inputs []models.OwnerGroupInput, existingCount int) ([]*models.OwnerGroup, error) {
	groups := make([]*models.OwnerGroup, 0, len(inputs))
	groupID := existingCount + 1
	for _, in := range inputs {
		group, err := newGroup(in)
		if err != nil {
			return nil, err
		}
		group.GroupID = groupID
		groupID++
		if !group.HasInterest() {
			group.GroupSequenceNumber = 1
		} else {
			group.GroupSequenceNumber = in.GroupID
		}
		group.Modified = true
		groups = append(groups, group)
	}
	return groups, nil
}

// Supersede resolves each delete instruction against the whole chain (root
// and every prior change registration: ownership can change repeatedly over
// the record's life, so superseded groups may live anywhere) and returns the
// supersession mutations for atomic persistence. Death-transfer variants
// carry death metadata for the removed owners.
func Supersede(
	agg *models.Aggregate,
	deletes []models.DeleteGroupInput,
	newRegID id.RegistrationID,
	regType models.RegistrationType,
) ([]models.GroupSupersession, error) {
	var mutations []models.GroupSupersession
	for _, del := range deletes {
		owner, group := findGroup(agg, del.GroupID)
		if group == nil {
			return nil, dErrors.Newf(dErrors.CodeValidation, "owner group %d not found on chain", del.GroupID)
		}
		if group.StatusType != models.OwnerStatusActive {
			return nil, dErrors.Newf(dErrors.CodeValidation, "owner group %d is not active", del.GroupID)
		}
		mutation := models.GroupSupersession{
			RegistrationID:       owner.ID,
			GroupID:              del.GroupID,
			ChangeRegistrationID: newRegID,
		}
		if regType.IsTransferDueToDeath() {
			mutation.DeceasedOwners = deceasedOwners(del.Owners)
		}
		mutations = append(mutations, mutation)
	}
	return mutations, nil
}

// Apply stamps one supersession onto the in-memory chain member owning the
// group: status PREVIOUS on the group and every owner in it, plus the
// superseding registration id and any death metadata. The store calls this
// inside its atomic unit.
func Apply(reg *models.Registration, mutation models.GroupSupersession) {
	for _, group := range reg.OwnerGroups {
		if group.GroupID != mutation.GroupID {
			continue
		}
		changeID := mutation.ChangeRegistrationID
		group.StatusType = models.OwnerStatusPrevious
		group.ChangeRegistrationID = &changeID
		group.Modified = true
		for _, owner := range group.Owners {
			owner.StatusType = models.OwnerStatusPrevious
			owner.ChangeRegistrationID = &changeID
			stampDeath(owner, mutation.DeceasedOwners)
		}
	}
}

// NormalizeCommonInterest rescales common-tenancy interests so every active
// COMMON group shares the maximum denominator among them:
//
//	newNumerator = oldNumerator * commonDenominator / oldDenominator
//
// Only groups created or modified by the current transition are rescaled
// unless includeAll is set for whole-aggregate consistency.
func NormalizeCommonInterest(groups []*models.OwnerGroup, includeAll bool) {
	commonDenominator := 0
	tcCount := 0
	for _, group := range groups {
		if group.IsActiveCommon() {
			tcCount++
			if group.InterestDenominator > commonDenominator {
				commonDenominator = group.InterestDenominator
			}
		}
	}
	if tcCount == 0 {
		return
	}
	for _, group := range groups {
		if !includeAll && !(group.Modified && group.StatusType == models.OwnerStatusActive) {
			continue
		}
		num, den := group.InterestNumerator, group.InterestDenominator
		if num > 0 && den > 0 && den != commonDenominator {
			group.InterestNumerator = num * commonDenominator / den
			group.InterestDenominator = commonDenominator
		}
	}
}

func newGroup(in models.OwnerGroupInput) (*models.OwnerGroup, error) {
	if len(in.Owners) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "owner group requires at least one owner")
	}
	group := &models.OwnerGroup{
		TenancyType:         in.TenancyType,
		StatusType:          models.OwnerStatusActive,
		Interest:            in.Interest,
		InterestNumerator:   in.InterestNumerator,
		InterestDenominator: in.InterestDenominator,
	}
	if group.TenancyType == "" {
		group.TenancyType = models.TenancySole
	}
	for _, ownerIn := range in.Owners {
		group.Owners = append(group.Owners, newOwner(ownerIn))
	}
	return group, nil
}

// newOwner infers the party type from name shape when not explicit, defaulting
// ambiguous cases to business owner.
func newOwner(in models.PartyInput) *models.Party {
	partyType := in.PartyType
	hasIndividual := in.IndividualName != nil && !in.IndividualName.IsEmpty()
	switch {
	case partyType == "" && hasIndividual:
		partyType = models.PartyOwnerIndividual
	case partyType == models.PartyOwnerBusiness && hasIndividual:
		partyType = models.PartyOwnerIndividual
	case partyType == models.PartyOwnerIndividual && in.OrganizationName != "":
		partyType = models.PartyOwnerBusiness
	case partyType == "":
		partyType = models.PartyOwnerBusiness
	}
	owner := &models.Party{
		PartyType:    partyType,
		BusinessName: in.OrganizationName,
		Address:      in.Address,
		EmailAddress: in.EmailAddress,
		PhoneNumber:  in.PhoneNumber,
		Description:  in.Description,
		StatusType:   models.OwnerStatusActive,
	}
	if in.IndividualName != nil {
		owner.Individual = *in.IndividualName
	}
	return owner
}

// findGroup scans root then chain for the group id.
func findGroup(agg *models.Aggregate, groupID int) (*models.Registration, *models.OwnerGroup) {
	for _, group := range agg.Base.OwnerGroups {
		if group.GroupID == groupID {
			return agg.Base, group
		}
	}
	for _, reg := range agg.Changes {
		for _, group := range reg.OwnerGroups {
			if group.GroupID == groupID {
				return reg, group
			}
		}
	}
	return nil, nil
}

func deceasedOwners(inputs []models.PartyInput) []models.DeceasedOwner {
	var deceased []models.DeceasedOwner
	for _, in := range inputs {
		if in.DeathCertificateNumber == "" && in.DeathDateTime == nil && in.DeathCorpNumber == "" {
			continue
		}
		party := models.Party{BusinessName: in.OrganizationName}
		if in.IndividualName != nil && !in.IndividualName.IsEmpty() {
			party = models.Party{Individual: *in.IndividualName}
		}
		name := party.Name()
		deceased = append(deceased, models.DeceasedOwner{
			Name:                   name,
			DeathCertificateNumber: in.DeathCertificateNumber,
			DeathTS:                in.DeathDateTime,
			DeathCorpNumber:        in.DeathCorpNumber,
		})
	}
	return deceased
}

func stampDeath(owner *models.Party, deceased []models.DeceasedOwner) {
	name := owner.Name()
	for _, d := range deceased {
		if d.Name == name {
			owner.DeathCertificateNumber = d.DeathCertificateNumber
			owner.DeathTS = d.DeathTS
			owner.DeathCorpNumber = d.DeathCorpNumber
			return
		}
	}
}
