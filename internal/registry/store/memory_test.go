package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mhregistry/internal/registry/models"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *MemoryStore
	now   time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemory()
	s.now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) mhr(raw string) id.MHRNumber {
	mhr, err := id.ParseMHRNumber(raw)
	s.Require().NoError(err)
	return mhr
}

func (s *MemoryStoreSuite) base(mhr id.MHRNumber, account id.AccountID) *models.Registration {
	return &models.Registration{
		ID:               id.NewRegistrationID(),
		MHRNumber:        mhr,
		RegistrationType: models.RegTypeManHome,
		StatusType:       models.StatusActive,
		RegistrationTS:   s.now,
		AccountID:        account,
		Document:         models.Document{DocumentID: "10000001", DocumentType: models.DocTypeManHomeReg},
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
		Locations: []models.Location{{ParkName: "SEASIDE ESTATES"}},
	}
}

func (s *MemoryStoreSuite) change(mhr id.MHRNumber, regType models.RegistrationType, docID string) *models.Registration {
	return &models.Registration{
		ID:               id.NewRegistrationID(),
		MHRNumber:        mhr,
		RegistrationType: regType,
		StatusType:       models.StatusActive,
		RegistrationTS:   s.now.Add(time.Hour),
		Document:         models.Document{DocumentID: docID},
	}
}

func (s *MemoryStoreSuite) TestSaveBase() {
	mhr := s.mhr("104000")

	s.Run("rejects non-root registration types", func() {
		reg := s.base(mhr, "PS1")
		reg.RegistrationType = models.RegTypeTransferSale
		err := s.store.SaveBase(s.ctx, reg)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("persists and loads back", func() {
		reg := s.base(mhr, "PS1")
		s.Require().NoError(s.store.SaveBase(s.ctx, reg))

		loaded, err := s.store.LoadBase(s.ctx, mhr)
		s.Require().NoError(err)
		s.Equal(reg.ID, loaded.ID)

		byID, err := s.store.LoadByID(s.ctx, reg.ID)
		s.Require().NoError(err)
		s.Equal(mhr, byID.MHRNumber)
	})

	s.Run("duplicate business key conflicts", func() {
		err := s.store.SaveBase(s.ctx, s.base(mhr, "PS2"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *MemoryStoreSuite) TestSaveTransition() {
	mhr := s.mhr("104001")
	base := s.base(mhr, "PS1")
	s.Require().NoError(s.store.SaveBase(s.ctx, base))

	s.Run("unknown chain", func() {
		tr := &models.Transition{Registration: s.change(s.mhr("999999"), models.RegTypeTransferSale, "10000002")}
		err := s.store.SaveTransition(s.ctx, tr)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("applies declared mutations with the new member", func() {
		reg := s.change(mhr, models.RegTypeExemptionRes, "10000003")
		reg.Note = &models.Note{DocumentType: models.DocTypeExemptionRes, StatusType: models.NoteStatusActive}
		exempt := models.StatusExempt
		tr := &models.Transition{
			Registration: reg,
			Mutations: models.Mutations{
				GroupSupersessions: []models.GroupSupersession{{
					RegistrationID:       base.ID,
					GroupID:              1,
					ChangeRegistrationID: reg.ID,
				}},
				BaseStatus: &exempt,
			},
		}
		s.Require().NoError(s.store.SaveTransition(s.ctx, tr))

		agg, err := s.store.LoadAggregate(s.ctx, mhr)
		s.Require().NoError(err)
		s.Equal(models.StatusExempt, agg.Base.StatusType)
		s.Equal(models.OwnerStatusPrevious, agg.Base.OwnerGroups[0].StatusType)
		s.Require().NotNil(agg.Base.OwnerGroups[0].ChangeRegistrationID)
		s.Equal(reg.ID, *agg.Base.OwnerGroups[0].ChangeRegistrationID)
		s.Require().Len(agg.Changes, 1)
		s.Equal(reg.ID, agg.Changes[0].ID)
	})

	s.Run("note cancellation and location update", func() {
		permit := s.change(mhr, models.RegTypePermit, "10000004")
		expiry := s.now.Add(30 * 24 * time.Hour)
		permit.Note = &models.Note{DocumentType: models.DocTypePermit, StatusType: models.NoteStatusActive, ExpiryDate: &expiry}
		s.Require().NoError(s.store.SaveTransition(s.ctx, &models.Transition{Registration: permit}))

		closer := s.change(mhr, models.RegTypeAdmin, "10000005")
		taxDate := s.now.AddDate(0, 0, -3)
		tr := &models.Transition{
			Registration: closer,
			Mutations: models.Mutations{
				NoteCancellations: []models.NoteCancellation{{
					RegistrationID:       permit.ID,
					ChangeRegistrationID: closer.ID,
				}},
				LocationUpdate: &models.LocationUpdate{
					RegistrationID:     base.ID,
					TaxCertificateDate: &taxDate,
				},
			},
		}
		s.Require().NoError(s.store.SaveTransition(s.ctx, tr))

		stored, err := s.store.LoadByID(s.ctx, permit.ID)
		s.Require().NoError(err)
		s.Equal(models.NoteStatusCancelled, stored.Note.StatusType)

		root, err := s.store.LoadBase(s.ctx, mhr)
		s.Require().NoError(err)
		s.Require().NotNil(root.Locations[0].TaxCertificateDate)
		s.Equal(taxDate, *root.Locations[0].TaxCertificateDate)
	})
}

func (s *MemoryStoreSuite) TestLoadsReturnCopies() {
	mhr := s.mhr("104010")
	reg := s.base(mhr, "PS1")
	s.Require().NoError(s.store.SaveBase(s.ctx, reg))

	s.Run("mutating a loaded aggregate leaves the chain untouched", func() {
		agg, err := s.store.LoadAggregate(s.ctx, mhr)
		s.Require().NoError(err)
		agg.Base.OwnerGroups[0].StatusType = models.OwnerStatusPrevious
		agg.Base.Locations[0].ParkName = "SCRIBBLED"

		fresh, err := s.store.LoadAggregate(s.ctx, mhr)
		s.Require().NoError(err)
		s.Equal(models.OwnerStatusActive, fresh.Base.OwnerGroups[0].StatusType)
		s.Equal("SEASIDE ESTATES", fresh.Base.Locations[0].ParkName)
	})

	s.Run("mutating the saved value after the fact changes nothing", func() {
		reg.StatusType = models.StatusExempt

		loaded, err := s.store.LoadBase(s.ctx, mhr)
		s.Require().NoError(err)
		s.Equal(models.StatusActive, loaded.StatusType)
	})
}

func (s *MemoryStoreSuite) TestFindMHRNumberByDocRegNumber() {
	mhr := s.mhr("104011")
	reg := s.base(mhr, "PS1")
	reg.Document.DocumentRegistrationNumber = "00990011"
	s.Require().NoError(s.store.SaveBase(s.ctx, reg))

	found, err := s.store.FindMHRNumberByDocRegNumber(s.ctx, "00990011")
	s.Require().NoError(err)
	s.Equal(mhr, found)

	_, err = s.store.FindMHRNumberByDocRegNumber(s.ctx, "00000000")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *MemoryStoreSuite) TestCountDocumentID() {
	mhr := s.mhr("104002")
	s.Require().NoError(s.store.SaveBase(s.ctx, s.base(mhr, "PS1")))

	count, err := s.store.CountDocumentID(s.ctx, "10000001")
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.CountDocumentID(s.ctx, "77777777")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *MemoryStoreSuite) TestExtraGrants() {
	mhr := s.mhr("104003")

	held, err := s.store.HasExtraGrant(s.ctx, mhr, "PS9")
	s.Require().NoError(err)
	s.False(held)

	s.Require().NoError(s.store.AddExtraGrant(s.ctx, mhr, "PS9"))

	held, err = s.store.HasExtraGrant(s.ctx, mhr, "PS9")
	s.Require().NoError(err)
	s.True(held)
}

func (s *MemoryStoreSuite) TestListByAccount() {
	first := s.base(s.mhr("104010"), "PS1")
	second := s.base(s.mhr("104011"), "PS1")
	second.ID = id.NewRegistrationID()
	second.RegistrationTS = s.now.Add(2 * time.Hour)
	other := s.base(s.mhr("104012"), "PS2")
	s.Require().NoError(s.store.SaveBase(s.ctx, first))
	s.Require().NoError(s.store.SaveBase(s.ctx, second))
	s.Require().NoError(s.store.SaveBase(s.ctx, other))

	s.Run("own registrations most recent first", func() {
		summaries, err := s.store.ListByAccount(s.ctx, "PS1")
		s.Require().NoError(err)
		s.Require().Len(summaries, 2)
		s.Equal(second.MHRNumber, summaries[0].MHRNumber)
		s.Equal(first.MHRNumber, summaries[1].MHRNumber)
		s.Equal("MANUFACTURED HOME REGISTRATION", summaries[0].RegistrationDescription)
		s.Equal([]string{"HALL SHARON"}, summaries[0].OwnerNames)
	})

	s.Run("extra grant widens visibility", func() {
		s.Require().NoError(s.store.AddExtraGrant(s.ctx, other.MHRNumber, "PS1"))
		summaries, err := s.store.ListByAccount(s.ctx, "PS1")
		s.Require().NoError(err)
		s.Len(summaries, 3)
	})

	s.Run("unrelated account sees only its own", func() {
		summaries, err := s.store.ListByAccount(s.ctx, "PS2")
		s.Require().NoError(err)
		s.Require().Len(summaries, 1)
		s.Equal(other.MHRNumber, summaries[0].MHRNumber)
	})
}

func (s *MemoryStoreSuite) TestNextMHRNumber() {
	first, err := s.store.NextMHRNumber(s.ctx)
	s.Require().NoError(err)
	s.Equal("100001", first.String())

	second, err := s.store.NextMHRNumber(s.ctx)
	s.Require().NoError(err)
	s.Equal("100002", second.String())
}
