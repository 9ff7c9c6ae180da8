// Package proposals stores customer proposals in Postgres.
package proposals

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"

	sq "github.com/Masterminds/squirrel"
)

const (
	tableProposals = "proposals"

	DefaultLimit = 100
)

var columns = []string{
	"id", "customer_name", "email", "phone", "address",
	"system_type", "status", "submission_date", "estimated_cost",
}

const schema = `CREATE TABLE IF NOT EXISTS proposals (
	id              SERIAL PRIMARY KEY,
	customer_name   TEXT NOT NULL,
	email           TEXT NOT NULL,
	phone           TEXT,
	address         TEXT,
	system_type     TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'Pending',
	submission_date DATE NOT NULL DEFAULT CURRENT_DATE,
	estimated_cost  DOUBLE PRECISION
)`

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

type Store struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log, now: time.Now}
}

// EnsureSchema creates the proposals table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewQueryExecutionFailedError("create proposals table", err)
	}
	return nil
}

// Create inserts p. Status defaults to Pending and the submission date to
// today.
func (s *Store) Create(ctx context.Context, p models.ProposalCreate) (*models.Proposal, error) {
	status := p.Status
	if status == "" {
		status = models.ProposalStatusPending
	}
	submitted := s.now()
	if p.SubmissionDate != nil && !p.SubmissionDate.IsZero() {
		submitted = p.SubmissionDate.Time
	}

	query, args, err := builder().Insert(tableProposals).
		Columns(columns[1:]...).
		Values(p.CustomerName, p.Email, p.Phone, p.Address, p.SystemType, status, submitted.Format("2006-01-02"), p.EstimatedCost).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	created, err := scanProposal(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("insert proposal", err)
	}
	s.logger.Info("Proposal created", map[string]interface{}{"id": created.ID, "systemType": created.SystemType})
	return created, nil
}

// List returns proposals ordered by id.
func (s *Store) List(ctx context.Context, skip, limit int) ([]models.Proposal, error) {
	if skip < 0 || limit < 0 {
		return nil, apperrors.NewRequestInvalidError("skip and limit must not be negative")
	}
	if limit == 0 {
		limit = DefaultLimit
	}

	query, args, err := builder().Select(columns...).
		From(tableProposals).
		OrderBy("id").
		Offset(uint64(skip)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list proposals", err)
	}
	defer rows.Close()

	list := make([]models.Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan proposal", err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list proposals", err)
	}
	return list, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*models.Proposal, error) {
	query, args, err := builder().Select(columns...).
		From(tableProposals).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	p, err := scanProposal(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewProposalNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get proposal", err)
	}
	return p, nil
}

// Update applies the non-nil fields of u. An empty update returns the stored
// proposal unchanged.
func (s *Store) Update(ctx context.Context, id int64, u models.ProposalUpdate) (*models.Proposal, error) {
	if u.Empty() {
		return s.Get(ctx, id)
	}

	set := map[string]interface{}{}
	if u.CustomerName != nil {
		set["customer_name"] = *u.CustomerName
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.SystemType != nil {
		set["system_type"] = *u.SystemType
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.EstimatedCost != nil {
		set["estimated_cost"] = *u.EstimatedCost
	}

	query, args, err := builder().Update(tableProposals).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	p, err := scanProposal(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewProposalNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("update proposal", err)
	}
	s.logger.Info("Proposal updated", map[string]interface{}{"id": id, "fields": len(set)})
	return p, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	query, args, err := builder().Delete(tableProposals).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("delete proposal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("delete proposal", err)
	}
	if n == 0 {
		return apperrors.NewProposalNotFoundError(id)
	}
	s.logger.Info("Proposal deleted", map[string]interface{}{"id": id})
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProposal(row rowScanner) (*models.Proposal, error) {
	var (
		p         models.Proposal
		phone     sql.NullString
		address   sql.NullString
		cost      sql.NullFloat64
		submitted time.Time
	)
	if err := row.Scan(&p.ID, &p.CustomerName, &p.Email, &phone, &address,
		&p.SystemType, &p.Status, &submitted, &cost); err != nil {
		return nil, err
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	if address.Valid {
		p.Address = &address.String
	}
	if cost.Valid {
		p.EstimatedCost = &cost.Float64
	}
	p.SubmissionDate = models.Date{Time: submitted}
	return &p, nil
}
