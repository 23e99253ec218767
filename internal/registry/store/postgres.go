package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mhregistry/internal/registry/groups"
	"mhregistry/internal/registry/models"
	"mhregistry/internal/registry/notes"
	id "mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/requestcontext"
)

// PostgresStore persists registration chains in PostgreSQL. Each chain member
// is one row; the entity graph (document, parties, groups, notes, locations)
// is stored as JSONB alongside the indexed columns used for lookups.
//
// Per-business-key isolation: SaveTransition locks the chain rows with
// SELECT ... FOR UPDATE inside one transaction, so concurrent transitions
// against the same MHR number serialize and mutations commit with the new
// registration or not at all.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is the DDL this store expects. Applied by migrations in deployment
// and by the integration test suite directly.
const Schema = `
CREATE TABLE IF NOT EXISTS mhr_registrations (
    id UUID PRIMARY KEY,
    mhr_number VARCHAR(7) NOT NULL,
    registration_type VARCHAR(20) NOT NULL,
    status_type VARCHAR(20) NOT NULL,
    registration_ts TIMESTAMPTZ NOT NULL,
    account_id VARCHAR(20),
    document_id VARCHAR(10) NOT NULL,
    data JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_mhr_registrations_mhr_number ON mhr_registrations (mhr_number);
CREATE INDEX IF NOT EXISTS ix_mhr_registrations_account_id ON mhr_registrations (account_id);
CREATE INDEX IF NOT EXISTS ix_mhr_registrations_document_id ON mhr_registrations (document_id);

CREATE TABLE IF NOT EXISTS mhr_extra_registrations (
    mhr_number VARCHAR(7) NOT NULL,
    account_id VARCHAR(20) NOT NULL,
    PRIMARY KEY (mhr_number, account_id)
);

CREATE SEQUENCE IF NOT EXISTS mhr_number_seq START 100001;
`

func (s *PostgresStore) SaveBase(ctx context.Context, reg *models.Registration) error {
	if !reg.RegistrationType.IsBase() {
		return dErrors.New(dErrors.CodeValidation, "chain root must be a new registration or conversion")
	}
	if err := s.insert(ctx, s.db, reg); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return dErrors.Newf(dErrors.CodeConflict, "chain already exists for MHR number %s", reg.MHRNumber)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "save base registration")
	}
	return nil
}

func (s *PostgresStore) SaveTransition(ctx context.Context, transition *models.Transition) error {
	reg := transition.Registration
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transition")
	}
	defer func() { _ = tx.Rollback() }()

	chain, err := s.loadChainTx(ctx, tx, reg.MHRNumber, true)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return ErrNotFound
	}
	byID := make(map[id.RegistrationID]*models.Registration, len(chain))
	touched := make(map[id.RegistrationID]bool)
	for _, member := range chain {
		byID[member.ID] = member
	}
	for _, mutation := range transition.Mutations.GroupSupersessions {
		member := byID[mutation.RegistrationID]
		if member == nil {
			return dErrors.Newf(dErrors.CodeInternal, "supersession target %s not found", mutation.RegistrationID)
		}
		groups.Apply(member, mutation)
		touched[member.ID] = true
	}
	for _, mutation := range transition.Mutations.NoteCancellations {
		member := byID[mutation.RegistrationID]
		if member == nil {
			return dErrors.Newf(dErrors.CodeInternal, "note cancellation target %s not found", mutation.RegistrationID)
		}
		notes.Cancel(member, mutation)
		touched[member.ID] = true
	}
	if update := transition.Mutations.LocationUpdate; update != nil {
		if member := byID[update.RegistrationID]; member != nil && len(member.Locations) > 0 {
			loc := &member.Locations[len(member.Locations)-1]
			if update.TaxCertificateDate != nil {
				loc.TaxCertificateDate = update.TaxCertificateDate
			}
			if update.TaxExpiryDate != nil {
				loc.TaxExpiryDate = update.TaxExpiryDate
			}
			touched[member.ID] = true
		}
	}
	if transition.Mutations.BaseStatus != nil {
		chain[0].StatusType = *transition.Mutations.BaseStatus
		touched[chain[0].ID] = true
	}
	for memberID := range touched {
		if err := s.update(ctx, tx, byID[memberID]); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update chain member")
		}
	}
	if err := s.insert(ctx, tx, reg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert change registration")
	}
	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transition")
	}
	return nil
}

func (s *PostgresStore) LoadAggregate(ctx context.Context, mhrNumber id.MHRNumber) (*models.Aggregate, error) {
	chain, err := s.loadChain(ctx, mhrNumber)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, ErrNotFound
	}
	agg := &models.Aggregate{Base: chain[0]}
	agg.Changes = append(agg.Changes, chain[1:]...)
	return agg, nil
}

func (s *PostgresStore) LoadBase(ctx context.Context, mhrNumber id.MHRNumber) (*models.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM mhr_registrations
		 WHERE mhr_number = $1 AND registration_type IN ('MHREG', 'MHREG_CONVERSION')`,
		mhrNumber.String())
	return scanRegistration(row)
}

func (s *PostgresStore) LoadByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM mhr_registrations WHERE id = $1`, regID.String())
	return scanRegistration(row)
}

func (s *PostgresStore) CountDocumentID(ctx context.Context, documentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mhr_registrations WHERE document_id = $1`, documentID).Scan(&count)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count document id")
	}
	return count, nil
}

func (s *PostgresStore) FindMHRNumberByDocRegNumber(ctx context.Context, docRegNumber string) (id.MHRNumber, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT mhr_number FROM mhr_registrations
		 WHERE data->'Document'->>'DocumentRegistrationNumber' = $1`,
		docRegNumber).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "find by document registration number")
	}
	return id.MHRNumber(raw), nil
}

func (s *PostgresStore) HasExtraGrant(ctx context.Context, mhrNumber id.MHRNumber, accountID id.AccountID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM mhr_extra_registrations WHERE mhr_number = $1 AND account_id = $2)`,
		mhrNumber.String(), accountID.String()).Scan(&exists)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check extra grant")
	}
	return exists, nil
}

func (s *PostgresStore) AddExtraGrant(ctx context.Context, mhrNumber id.MHRNumber, accountID id.AccountID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mhr_extra_registrations (mhr_number, account_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		mhrNumber.String(), accountID.String())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "add extra grant")
	}
	return nil
}

func (s *PostgresStore) ListByAccount(ctx context.Context, accountID id.AccountID) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT mhr_number FROM (
		     SELECT mhr_number FROM mhr_registrations
		     WHERE account_id = $1 AND registration_type IN ('MHREG', 'MHREG_CONVERSION')
		     UNION
		     SELECT mhr_number FROM mhr_extra_registrations WHERE account_id = $1
		 ) keys`,
		accountID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list account registrations")
	}
	defer rows.Close()
	var numbers []id.MHRNumber
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan account registration")
		}
		numbers = append(numbers, id.MHRNumber(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list account registrations")
	}
	now := requestcontext.Now(ctx)
	summaries := make([]Summary, 0, len(numbers))
	for _, number := range numbers {
		agg, err := s.LoadAggregate(ctx, number)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summarize(agg, now))
	}
	return summaries, nil
}

func (s *PostgresStore) NextMHRNumber(ctx context.Context) (id.MHRNumber, error) {
	var next int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('mhr_number_seq')`).Scan(&next); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "allocate MHR number")
	}
	return id.ParseMHRNumber(fmt.Sprintf("%06d", next))
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) insert(ctx context.Context, db execer, reg *models.Registration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO mhr_registrations
		     (id, mhr_number, registration_type, status_type, registration_ts, account_id, document_id, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		reg.ID.String(), reg.MHRNumber.String(), string(reg.RegistrationType), string(reg.StatusType),
		reg.RegistrationTS, reg.AccountID.String(), reg.Document.DocumentID, data)
	return err
}

func (s *PostgresStore) update(ctx context.Context, db execer, reg *models.Registration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`UPDATE mhr_registrations SET status_type = $2, data = $3 WHERE id = $1`,
		reg.ID.String(), string(reg.StatusType), data)
	return err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) loadChain(ctx context.Context, mhrNumber id.MHRNumber) ([]*models.Registration, error) {
	return s.queryChain(ctx, s.db, mhrNumber, false)
}

func (s *PostgresStore) loadChainTx(ctx context.Context, tx *sql.Tx, mhrNumber id.MHRNumber, forUpdate bool) ([]*models.Registration, error) {
	return s.queryChain(ctx, tx, mhrNumber, forUpdate)
}

// queryChain returns the chain ordered root first, then changes by
// registration timestamp.
func (s *PostgresStore) queryChain(ctx context.Context, db querier, mhrNumber id.MHRNumber, forUpdate bool) ([]*models.Registration, error) {
	query := `SELECT data FROM mhr_registrations WHERE mhr_number = $1
	          ORDER BY (registration_type IN ('MHREG', 'MHREG_CONVERSION')) DESC, registration_ts`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := db.QueryContext(ctx, query, mhrNumber.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load chain")
	}
	defer rows.Close()
	var chain []*models.Registration
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan chain member")
		}
		reg := &models.Registration{}
		if err := json.Unmarshal(data, reg); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode chain member")
		}
		chain = append(chain, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load chain")
	}
	return chain, nil
}

func scanRegistration(row *sql.Row) (*models.Registration, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load registration")
	}
	reg := &models.Registration{}
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode registration")
	}
	return reg, nil
}
