package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"mhregistry/internal/registry/groups"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/notes"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/requestcontext"
)

// MemoryStore keeps registration chains in process memory. A single mutex
// serializes all writes, which trivially satisfies the per-business-key
// isolation contract. Intended for tests and local development.
type MemoryStore struct {
	mu sync.RWMutex
	// chains maps business key to the chain members in insertion order; the
	// root is always element 0.
	chains  map[id.MHRNumber][]*models.Registration
	byID    map[id.RegistrationID]*models.Registration
	grants  map[string]bool
	nextMHR int
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		chains:  make(map[id.MHRNumber][]*models.Registration),
		byID:    make(map[id.RegistrationID]*models.Registration),
		grants:  make(map[string]bool),
		nextMHR: 100000,
	}
}

func (s *MemoryStore) SaveBase(_ context.Context, reg *models.Registration) error {
	if !reg.RegistrationType.IsBase() {
		return dErrors.New(dErrors.CodeValidation, "chain root must be a new registration or conversion")
	}
	stored, err := cloneRegistration(reg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.chains[reg.MHRNumber]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "chain already exists for MHR number %s", reg.MHRNumber)
	}
	s.chains[reg.MHRNumber] = []*models.Registration{stored}
	s.byID[reg.ID] = stored
	return nil
}

func (s *MemoryStore) SaveTransition(_ context.Context, transition *models.Transition) error {
	reg := transition.Registration
	stored, err := cloneRegistration(reg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	chain, ok := s.chains[reg.MHRNumber]
	if !ok {
		return ErrNotFound
	}
	// Apply mutations to prior chain members, then append. Memory holds the
	// canonical objects, so the whole unit commits under one mutex hold.
	for _, mutation := range transition.Mutations.GroupSupersessions {
		member := s.byID[mutation.RegistrationID]
		if member == nil {
			return dErrors.Newf(dErrors.CodeInternal, "supersession target %s not found", mutation.RegistrationID)
		}
		groups.Apply(member, mutation)
	}
	for _, mutation := range transition.Mutations.NoteCancellations {
		member := s.byID[mutation.RegistrationID]
		if member == nil {
			return dErrors.Newf(dErrors.CodeInternal, "note cancellation target %s not found", mutation.RegistrationID)
		}
		notes.Cancel(member, mutation)
	}
	if update := transition.Mutations.LocationUpdate; update != nil {
		if member := s.byID[update.RegistrationID]; member != nil && len(member.Locations) > 0 {
			loc := &member.Locations[len(member.Locations)-1]
			if update.TaxCertificateDate != nil {
				loc.TaxCertificateDate = update.TaxCertificateDate
			}
			if update.TaxExpiryDate != nil {
				loc.TaxExpiryDate = update.TaxExpiryDate
			}
		}
	}
	if transition.Mutations.BaseStatus != nil {
		chain[0].StatusType = *transition.Mutations.BaseStatus
	}
	s.chains[reg.MHRNumber] = append(chain, stored)
	s.byID[reg.ID] = stored
	return nil
}

// LoadAggregate deep-copies every chain member so callers never share
// pointers with the canonical chain a later SaveTransition will mutate.
func (s *MemoryStore) LoadAggregate(_ context.Context, mhrNumber id.MHRNumber) (*models.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain, ok := s.chains[mhrNumber]
	if !ok {
		return nil, ErrNotFound
	}
	agg := &models.Aggregate{}
	for i, member := range chain {
		copied, err := cloneRegistration(member)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			agg.Base = copied
			continue
		}
		agg.Changes = append(agg.Changes, copied)
	}
	return agg, nil
}

func (s *MemoryStore) LoadBase(_ context.Context, mhrNumber id.MHRNumber) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain, ok := s.chains[mhrNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRegistration(chain[0])
}

func (s *MemoryStore) LoadByID(_ context.Context, regID id.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if reg, ok := s.byID[regID]; ok {
		return cloneRegistration(reg)
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindMHRNumberByDocRegNumber(_ context.Context, docRegNumber string) (id.MHRNumber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reg := range s.byID {
		if reg.Document.DocumentRegistrationNumber == docRegNumber {
			return reg.MHRNumber, nil
		}
	}
	return "", ErrNotFound
}

// cloneRegistration copies one chain member through a JSON round trip, the
// same shape the SQL store persists.
func cloneRegistration(reg *models.Registration) (*models.Registration, error) {
	data, err := json.Marshal(reg)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "copy registration")
	}
	copied := &models.Registration{}
	if err := json.Unmarshal(data, copied); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "copy registration")
	}
	return copied, nil
}

func (s *MemoryStore) CountDocumentID(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, reg := range s.byID {
		if reg.Document.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) HasExtraGrant(_ context.Context, mhrNumber id.MHRNumber, accountID id.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[grantKey(mhrNumber, accountID)], nil
}

func (s *MemoryStore) AddExtraGrant(_ context.Context, mhrNumber id.MHRNumber, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grantKey(mhrNumber, accountID)] = true
	return nil
}

func (s *MemoryStore) ListByAccount(ctx context.Context, accountID id.AccountID) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := requestcontext.Now(ctx)
	var summaries []Summary
	for mhrNumber, chain := range s.chains {
		base := chain[0]
		if base.AccountID != accountID && !s.grants[grantKey(mhrNumber, accountID)] {
			continue
		}
		agg := &models.Aggregate{Base: base}
		agg.Changes = append(agg.Changes, chain[1:]...)
		summaries = append(summaries, Summarize(agg, now))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreateDateTime.After(summaries[j].CreateDateTime)
	})
	return summaries, nil
}

func (s *MemoryStore) NextMHRNumber(_ context.Context) (id.MHRNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMHR++
	return id.ParseMHRNumber(fmt.Sprintf("%06d", s.nextMHR))
}

func grantKey(mhrNumber id.MHRNumber, accountID id.AccountID) string {
	return mhrNumber.String() + ":" + accountID.String()
}
