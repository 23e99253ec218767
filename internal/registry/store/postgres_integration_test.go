//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/store"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx   context.Context
	pg    *containers.PostgresContainer
	store *store.PostgresStore
	now   time.Time
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	_, err := s.pg.DB.ExecContext(s.ctx, store.Schema)
	s.Require().NoError(err)
	s.store = store.NewPostgres(s.pg.DB)
	s.now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Reset(s.ctx, "mhr_registrations", "mhr_extra_registrations"))
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed tests in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) mhr(raw string) id.MHRNumber {
	mhr, err := id.ParseMHRNumber(raw)
	s.Require().NoError(err)
	return mhr
}

func (s *PostgresStoreSuite) base(mhr id.MHRNumber, account id.AccountID, docID string) *models.Registration {
	return &models.Registration{
		ID:               id.NewRegistrationID(),
		MHRNumber:        mhr,
		RegistrationType: models.RegTypeManHome,
		StatusType:       models.StatusActive,
		RegistrationTS:   s.now,
		AccountID:        account,
		Document:         models.Document{DocumentID: docID, DocumentType: models.DocTypeManHomeReg, DeclaredValue: 40000},
		OwnerGroups: []*models.OwnerGroup{{
			GroupID:     1,
			TenancyType: models.TenancySole,
			StatusType:  models.OwnerStatusActive,
			Owners: []*models.Party{{
				PartyType:  models.PartyOwnerIndividual,
				Individual: models.PersonName{First: "SHARON", Last: "HALL"},
				StatusType: models.OwnerStatusActive,
			}},
		}},
		Locations: []models.Location{{ParkName: "SEASIDE ESTATES", Address: models.Address{City: "SOOKE"}}},
		Parties: []models.Party{{
			PartyType:    models.PartySubmitting,
			BusinessName: "COASTAL NOTARIES",
			StatusType:   models.OwnerStatusActive,
		}},
	}
}

func (s *PostgresStoreSuite) TestSaveBaseRoundTrip() {
	mhr := s.mhr("105001")
	reg := s.base(mhr, "PS1", "10000001")
	s.Require().NoError(s.store.SaveBase(s.ctx, reg))

	agg, err := s.store.LoadAggregate(s.ctx, mhr)
	s.Require().NoError(err)
	s.Equal(reg.ID, agg.Base.ID)
	s.Equal(models.DocTypeManHomeReg, agg.Base.Document.DocumentType)
	s.Equal(40000, agg.Base.Document.DeclaredValue)
	s.Require().Len(agg.Base.OwnerGroups, 1)
	s.Equal("HALL SHARON", agg.Base.OwnerGroups[0].Owners[0].Name())
	s.Equal("SEASIDE ESTATES", agg.Base.Locations[0].ParkName)
	s.Empty(agg.Changes)

	err = s.store.SaveBase(s.ctx, s.base(mhr, "PS2", "10000099"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *PostgresStoreSuite) TestSaveTransitionAppliesMutations() {
	mhr := s.mhr("105002")
	base := s.base(mhr, "PS1", "10000002")
	s.Require().NoError(s.store.SaveBase(s.ctx, base))

	change := &models.Registration{
		ID:               id.NewRegistrationID(),
		MHRNumber:        mhr,
		RegistrationType: models.RegTypeExemptionRes,
		StatusType:       models.StatusActive,
		RegistrationTS:   s.now.Add(time.Hour),
		AccountID:        "PS1",
		Document:         models.Document{DocumentID: "10000003", DocumentType: models.DocTypeExemptionRes},
		Note: &models.Note{
			DocumentType: models.DocTypeExemptionRes,
			DocumentID:   "10000003",
			StatusType:   models.NoteStatusActive,
			EffectiveTS:  s.now.Add(time.Hour),
		},
	}
	exempt := models.StatusExempt
	tr := &models.Transition{
		Registration: change,
		Mutations: models.Mutations{
			GroupSupersessions: []models.GroupSupersession{{
				RegistrationID:       base.ID,
				GroupID:              1,
				ChangeRegistrationID: change.ID,
			}},
			BaseStatus: &exempt,
		},
	}
	s.Require().NoError(s.store.SaveTransition(s.ctx, tr))

	agg, err := s.store.LoadAggregate(s.ctx, mhr)
	s.Require().NoError(err)
	s.Equal(models.StatusExempt, agg.Base.StatusType)
	s.Equal(models.OwnerStatusPrevious, agg.Base.OwnerGroups[0].StatusType)
	s.Require().Len(agg.Changes, 1)
	s.Equal(change.ID, agg.Changes[0].ID)
	s.Require().NotNil(agg.Changes[0].Note)
	s.Equal(models.NoteStatusActive, agg.Changes[0].Note.StatusType)
}

func (s *PostgresStoreSuite) TestChainOrdering() {
	mhr := s.mhr("105003")
	base := s.base(mhr, "PS1", "10000004")
	s.Require().NoError(s.store.SaveBase(s.ctx, base))

	for i, docID := range []string{"10000005", "10000006"} {
		change := &models.Registration{
			ID:               id.NewRegistrationID(),
			MHRNumber:        mhr,
			RegistrationType: models.RegTypeUnitNote,
			StatusType:       models.StatusActive,
			RegistrationTS:   s.now.Add(time.Duration(i+1) * time.Hour),
			AccountID:        "PS1",
			Document:         models.Document{DocumentID: docID, DocumentType: models.DocTypeCaution},
		}
		s.Require().NoError(s.store.SaveTransition(s.ctx, &models.Transition{Registration: change}))
	}

	agg, err := s.store.LoadAggregate(s.ctx, mhr)
	s.Require().NoError(err)
	s.Require().Len(agg.Changes, 2)
	s.Equal("10000005", agg.Changes[0].Document.DocumentID)
	s.Equal("10000006", agg.Changes[1].Document.DocumentID)
}

func (s *PostgresStoreSuite) TestCountDocumentID() {
	mhr := s.mhr("105004")
	s.Require().NoError(s.store.SaveBase(s.ctx, s.base(mhr, "PS1", "10000007")))

	count, err := s.store.CountDocumentID(s.ctx, "10000007")
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.CountDocumentID(s.ctx, "99999999")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *PostgresStoreSuite) TestFindMHRNumberByDocRegNumber() {
	mhr := s.mhr("105010")
	reg := s.base(mhr, "PS1", "10000011")
	reg.Document.DocumentRegistrationNumber = "00990011"
	s.Require().NoError(s.store.SaveBase(s.ctx, reg))

	found, err := s.store.FindMHRNumberByDocRegNumber(s.ctx, "00990011")
	s.Require().NoError(err)
	s.Equal(mhr, found)

	_, err = s.store.FindMHRNumberByDocRegNumber(s.ctx, "00000000")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestExtraGrants() {
	mhr := s.mhr("105005")

	held, err := s.store.HasExtraGrant(s.ctx, mhr, "PS9")
	s.Require().NoError(err)
	s.False(held)

	s.Require().NoError(s.store.AddExtraGrant(s.ctx, mhr, "PS9"))
	// Idempotent on repeat.
	s.Require().NoError(s.store.AddExtraGrant(s.ctx, mhr, "PS9"))

	held, err = s.store.HasExtraGrant(s.ctx, mhr, "PS9")
	s.Require().NoError(err)
	s.True(held)
}

func (s *PostgresStoreSuite) TestListByAccount() {
	own := s.base(s.mhr("105006"), "PS1", "10000008")
	granted := s.base(s.mhr("105007"), "PS2", "10000009")
	s.Require().NoError(s.store.SaveBase(s.ctx, own))
	s.Require().NoError(s.store.SaveBase(s.ctx, granted))
	s.Require().NoError(s.store.AddExtraGrant(s.ctx, granted.MHRNumber, "PS1"))

	summaries, err := s.store.ListByAccount(s.ctx, "PS1")
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)
	for _, summary := range summaries {
		s.Equal("COASTAL NOTARIES", summary.SubmittingParty)
		s.Contains(summary.OwnerNames, "HALL SHARON")
	}
}

func (s *PostgresStoreSuite) TestNextMHRNumber() {
	first, err := s.store.NextMHRNumber(s.ctx)
	s.Require().NoError(err)
	second, err := s.store.NextMHRNumber(s.ctx)
	s.Require().NoError(err)
	s.NotEqual(first.String(), second.String())
	s.Len(first.String(), 6)
}

func (s *PostgresStoreSuite) TestLoadMissing() {
	_, err := s.store.LoadAggregate(s.ctx, s.mhr("109999"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.store.LoadByID(s.ctx, id.NewRegistrationID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
