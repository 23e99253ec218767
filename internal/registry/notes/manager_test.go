package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mhregistry/internal/registry/models"
	id "mhregistry/pkg/domain"
)

type NoteManagerSuite struct {
	suite.Suite
	now time.Time
}

func (s *NoteManagerSuite) SetupTest() {
	s.now = time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
}

func TestNoteManagerSuite(t *testing.T) {
	suite.Run(t, new(NoteManagerSuite))
}

func permitChange(docType models.DocumentType, status models.NoteStatusType, expiry time.Time) *models.Registration {
	return &models.Registration{
		ID: id.NewRegistrationID(),
		Note: &models.Note{
			DocumentType: docType,
			StatusType:   status,
			ExpiryDate:   &expiry,
		},
	}
}

func (s *NoteManagerSuite) TestCreate() {
	s.Run("binds note to the owning document", func() {
		note := Create(&models.NoteInput{Remarks: "left in place"}, models.DocTypeCaution, "10000001", s.now)
		s.Equal(models.DocTypeCaution, note.DocumentType)
		s.Equal("10000001", note.DocumentID)
		s.Equal(models.NoteStatusActive, note.StatusType)
		s.Equal("left in place", note.Remarks)
		s.Equal(s.now, note.EffectiveTS)
		s.Nil(note.ExpiryDate)
	})

	s.Run("payload effective and expiry override defaults", func() {
		effective := s.now.Add(-24 * time.Hour)
		expiry := s.now.Add(90 * 24 * time.Hour)
		note := Create(&models.NoteInput{EffectiveDateTime: &effective, ExpiryDateTime: &expiry}, models.DocTypeCaution, "10000001", s.now)
		s.Equal(effective, note.EffectiveTS)
		s.Require().NotNil(note.ExpiryDate)
		s.Equal(expiry, *note.ExpiryDate)
	})

	s.Run("nil input still produces a bound active note", func() {
		note := Create(nil, models.DocTypeExemptionRes, "10000002", s.now)
		s.Equal(models.NoteStatusActive, note.StatusType)
		s.Equal(s.now, note.EffectiveTS)
	})
}

func (s *NoteManagerSuite) TestComputePermitExpiry() {
	s.Run("end of day at duration from now", func() {
		expiry := ComputePermitExpiry(s.now, DefaultPermitDuration)
		want := time.Date(2024, 7, 1, 23, 59, 59, 0, time.UTC)
		s.Equal(want, expiry)
	})

	s.Run("non-positive duration falls back to the default", func() {
		s.Equal(ComputePermitExpiry(s.now, DefaultPermitDuration), ComputePermitExpiry(s.now, 0))
	})
}

func (s *NoteManagerSuite) TestCreatePermit() {
	s.Run("new permit computes a fresh expiry", func() {
		agg := &models.Aggregate{Base: &models.Registration{}}
		note := CreatePermit(agg, models.DocTypePermit, "10000003", false, s.now, DefaultPermitDuration)
		s.Require().NotNil(note.ExpiryDate)
		s.Equal(time.Date(2024, 7, 1, 23, 59, 59, 0, time.UTC), *note.ExpiryDate)
	})

	s.Run("amendment reuses the active permit expiry", func() {
		original := time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)
		agg := &models.Aggregate{
			Base:    &models.Registration{},
			Changes: []*models.Registration{permitChange(models.DocTypePermit, models.NoteStatusActive, original)},
		}
		note := CreatePermit(agg, models.DocTypeAmendPermit, "10000004", true, s.now, DefaultPermitDuration)
		s.Require().NotNil(note.ExpiryDate)
		s.Equal(original, *note.ExpiryDate)
	})

	s.Run("amendment carries the most recent active expiry", func() {
		first := time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)
		second := time.Date(2024, 6, 20, 23, 59, 59, 0, time.UTC)
		agg := &models.Aggregate{
			Base: &models.Registration{},
			Changes: []*models.Registration{
				permitChange(models.DocTypePermit, models.NoteStatusActive, first),
				permitChange(models.DocTypePermitExt, models.NoteStatusActive, second),
			},
		}
		note := CreatePermit(agg, models.DocTypeAmendPermit, "10000005", true, s.now, DefaultPermitDuration)
		s.Equal(second, *note.ExpiryDate)
	})

	s.Run("amendment ignores cancelled permits", func() {
		cancelled := time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)
		agg := &models.Aggregate{
			Base:    &models.Registration{},
			Changes: []*models.Registration{permitChange(models.DocTypePermit, models.NoteStatusCancelled, cancelled)},
		}
		note := CreatePermit(agg, models.DocTypeAmendPermit, "10000006", true, s.now, DefaultPermitDuration)
		s.Equal(time.Date(2024, 7, 1, 23, 59, 59, 0, time.UTC), *note.ExpiryDate)
	})
}

func (s *NoteManagerSuite) TestCancel() {
	s.Run("stamps active note cancelled with the closing registration", func() {
		changeID := id.NewRegistrationID()
		reg := permitChange(models.DocTypePermit, models.NoteStatusActive, s.now)
		Cancel(reg, models.NoteCancellation{RegistrationID: reg.ID, ChangeRegistrationID: changeID})
		s.Equal(models.NoteStatusCancelled, reg.Note.StatusType)
		s.Require().NotNil(reg.Note.ChangeRegistrationID)
		s.Equal(changeID, *reg.Note.ChangeRegistrationID)
	})

	s.Run("leaves non-active notes untouched", func() {
		reg := permitChange(models.DocTypePermit, models.NoteStatusExpired, s.now)
		Cancel(reg, models.NoteCancellation{ChangeRegistrationID: id.NewRegistrationID()})
		s.Equal(models.NoteStatusExpired, reg.Note.StatusType)
		s.Nil(reg.Note.ChangeRegistrationID)
	})
}

func (s *NoteManagerSuite) TestCancelActivePermits() {
	newRegID := id.NewRegistrationID()

	s.Run("targets every active permit note", func() {
		expiry := s.now.Add(10 * 24 * time.Hour)
		active := permitChange(models.DocTypePermit, models.NoteStatusActive, expiry)
		cancelled := permitChange(models.DocTypePermitExt, models.NoteStatusCancelled, expiry)
		caution := &models.Registration{
			ID:   id.NewRegistrationID(),
			Note: &models.Note{DocumentType: models.DocTypeCaution, StatusType: models.NoteStatusActive},
		}
		agg := &models.Aggregate{
			Base:    &models.Registration{},
			Changes: []*models.Registration{active, cancelled, caution},
		}
		cancellations := CancelActivePermits(agg, newRegID)
		s.Require().Len(cancellations, 1)
		s.Equal(active.ID, cancellations[0].RegistrationID)
		s.Equal(newRegID, cancellations[0].ChangeRegistrationID)
	})

	s.Run("no permits means no mutations", func() {
		agg := &models.Aggregate{Base: &models.Registration{}}
		s.Empty(CancelActivePermits(agg, newRegID))
	})
}
