package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jassari/internal/membership"
	"jassari/pkg/platform/sentinel"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the same queries
// run inside and outside transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists profiles in PostgreSQL. Membership numbers come from
// the membership_number_seq sequence inside the insert transaction, which is
// what guarantees global uniqueness and monotonicity across concurrent
// creations.
type PostgresStore struct {
	pool         *pgxpool.Pool
	db           querier
	numberLength int
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(pool *pgxpool.Pool, numberLength int) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool, numberLength: numberLength}
}

const profileColumns = `
	id, membership_number, birth_date, school_name, school_class, language_at_home,
	expiration, approver_first_name, approver_last_name, approver_phone, approver_email,
	approval_token, approval_notification_at, approved_at, photo_usage_approved,
	profile_access_token, profile_access_token_expires_at, created_at, updated_at`

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (membership.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM youth_profiles WHERE id = $1`
	p, err := scanProfile(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membership.Profile{}, sentinel.ErrNotFound
		}
		return membership.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if err := s.loadContacts(ctx, &p); err != nil {
		return membership.Profile{}, err
	}
	return p, nil
}

func (s *PostgresStore) GetByApprovalToken(ctx context.Context, token string) (membership.Profile, error) {
	if token == "" {
		return membership.Profile{}, sentinel.ErrNotFound
	}
	query := `SELECT` + profileColumns + ` FROM youth_profiles WHERE approval_token = $1`
	p, err := scanProfile(s.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membership.Profile{}, sentinel.ErrNotFound
		}
		return membership.Profile{}, fmt.Errorf("get profile by approval token: %w", err)
	}
	if err := s.loadContacts(ctx, &p); err != nil {
		return membership.Profile{}, err
	}
	return p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p membership.Profile) (membership.Profile, error) {
	var seq int64
	if err := s.db.QueryRow(ctx, `SELECT nextval('membership_number_seq')`).Scan(&seq); err != nil {
		return membership.Profile{}, fmt.Errorf("next membership number: %w", err)
	}
	p.MembershipNumber = fmt.Sprintf("%0*d", s.numberLength, seq)

	query := `
		INSERT INTO youth_profiles (
			id, membership_number, birth_date, school_name, school_class, language_at_home,
			expiration, approver_first_name, approver_last_name, approver_phone, approver_email,
			approval_token, approval_notification_at, approved_at, photo_usage_approved,
			profile_access_token, profile_access_token_expires_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		p.ID, p.MembershipNumber, p.BirthDate, p.SchoolName, p.SchoolClass, string(p.LanguageAtHome),
		p.Expiration, p.ApproverFirstName, p.ApproverLastName, p.ApproverPhone, p.ApproverEmail,
		p.ApprovalToken, p.ApprovalNotificationAt, p.ApprovedAt, p.PhotoUsageApproved,
		p.ProfileAccessToken, p.ProfileAccessTokenExpiresAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return membership.Profile{}, sentinel.ErrConflict
		}
		return membership.Profile{}, fmt.Errorf("insert profile: %w", err)
	}

	for i := range p.ContactPersons {
		p.ContactPersons[i].ProfileID = p.ID
		cp, err := s.AddContactPerson(ctx, p.ContactPersons[i])
		if err != nil {
			return membership.Profile{}, err
		}
		p.ContactPersons[i] = cp
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p membership.Profile) (membership.Profile, error) {
	query := `
		UPDATE youth_profiles SET
			birth_date = $2, school_name = $3, school_class = $4, language_at_home = $5,
			expiration = $6, approver_first_name = $7, approver_last_name = $8,
			approver_phone = $9, approver_email = $10, approval_token = $11,
			approval_notification_at = $12, approved_at = $13, photo_usage_approved = $14,
			profile_access_token = $15, profile_access_token_expires_at = $16, updated_at = NOW()
		WHERE id = $1
		RETURNING membership_number, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		p.ID, p.BirthDate, p.SchoolName, p.SchoolClass, string(p.LanguageAtHome),
		p.Expiration, p.ApproverFirstName, p.ApproverLastName, p.ApproverPhone, p.ApproverEmail,
		p.ApprovalToken, p.ApprovalNotificationAt, p.ApprovedAt, p.PhotoUsageApproved,
		p.ProfileAccessToken, p.ProfileAccessTokenExpiresAt,
	).Scan(&p.MembershipNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membership.Profile{}, sentinel.ErrNotFound
		}
		return membership.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	if err := s.loadContacts(ctx, &p); err != nil {
		return membership.Profile{}, err
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	// additional_contact_persons cascades via its foreign key.
	tag, err := s.db.Exec(ctx, `DELETE FROM youth_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddContactPerson(ctx context.Context, cp membership.ContactPerson) (membership.ContactPerson, error) {
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	query := `
		INSERT INTO additional_contact_persons (id, profile_id, first_name, last_name, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.Exec(ctx, query, cp.ID, cp.ProfileID, cp.FirstName, cp.LastName, cp.Phone, cp.Email); err != nil {
		if isForeignKeyViolation(err) {
			return membership.ContactPerson{}, sentinel.ErrNotFound
		}
		return membership.ContactPerson{}, fmt.Errorf("insert contact person: %w", err)
	}
	return cp, nil
}

func (s *PostgresStore) UpdateContactPerson(ctx context.Context, profileID uuid.UUID, upd membership.ContactPersonUpdate) (membership.ContactPerson, error) {
	query := `
		UPDATE additional_contact_persons SET
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			phone = COALESCE($5, phone),
			email = COALESCE($6, email)
		WHERE id = $1 AND profile_id = $2
		RETURNING id, profile_id, first_name, last_name, phone, email
	`
	var cp membership.ContactPerson
	err := s.db.QueryRow(ctx, query, upd.ID, profileID, upd.FirstName, upd.LastName, upd.Phone, upd.Email).
		Scan(&cp.ID, &cp.ProfileID, &cp.FirstName, &cp.LastName, &cp.Phone, &cp.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return membership.ContactPerson{}, sentinel.ErrNotFound
		}
		return membership.ContactPerson{}, fmt.Errorf("update contact person: %w", err)
	}
	return cp, nil
}

func (s *PostgresStore) RemoveContactPerson(ctx context.Context, profileID, contactID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM additional_contact_persons WHERE id = $1 AND profile_id = $2`, contactID, profileID)
	if err != nil {
		return fmt.Errorf("delete contact person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClearLapsedAccessTokens(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE youth_profiles
		SET profile_access_token = '', profile_access_token_expires_at = NULL, updated_at = NOW()
		WHERE profile_access_token <> '' AND profile_access_token_expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear lapsed access tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// RunInTx runs fn against a store bound to a single database transaction.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txStore := &PostgresStore{pool: s.pool, db: tx, numberLength: s.numberLength}
	if err := fn(txStore); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) loadContacts(ctx context.Context, p *membership.Profile) error {
	rows, err := s.db.Query(ctx, `
		SELECT id, profile_id, first_name, last_name, phone, email
		FROM additional_contact_persons
		WHERE profile_id = $1
		ORDER BY first_name, last_name
	`, p.ID)
	if err != nil {
		return fmt.Errorf("list contact persons: %w", err)
	}
	defer rows.Close()

	p.ContactPersons = nil
	for rows.Next() {
		var cp membership.ContactPerson
		if err := rows.Scan(&cp.ID, &cp.ProfileID, &cp.FirstName, &cp.LastName, &cp.Phone, &cp.Email); err != nil {
			return fmt.Errorf("scan contact person: %w", err)
		}
		p.ContactPersons = append(p.ContactPersons, cp)
	}
	return rows.Err()
}

type profileRow interface {
	Scan(dest ...any) error
}

func scanProfile(row profileRow) (membership.Profile, error) {
	var p membership.Profile
	var language string
	if err := row.Scan(
		&p.ID, &p.MembershipNumber, &p.BirthDate, &p.SchoolName, &p.SchoolClass, &language,
		&p.Expiration, &p.ApproverFirstName, &p.ApproverLastName, &p.ApproverPhone, &p.ApproverEmail,
		&p.ApprovalToken, &p.ApprovalNotificationAt, &p.ApprovedAt, &p.PhotoUsageApproved,
		&p.ProfileAccessToken, &p.ProfileAccessTokenExpiresAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return membership.Profile{}, err
	}
	p.LanguageAtHome = membership.Language(language)
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
