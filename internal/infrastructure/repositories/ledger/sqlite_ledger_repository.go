package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/domain/repositories"

	_ "modernc.org/sqlite"
)

// SQLiteLedgerRepository implements repositories.LedgerRepository on SQLite.
type SQLiteLedgerRepository struct {
	db *sql.DB
}

var _ repositories.LedgerRepository = (*SQLiteLedgerRepository)(nil)

// NewSQLiteLedgerRepository opens the database at dsn and applies the schema.
// A single connection is used, which also keeps ":memory:" databases alive.
func NewSQLiteLedgerRepository(ctx context.Context, dsn string) (*SQLiteLedgerRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}

	logger.Debugf("[ledger] Opened %s", redact(dsn))
	return &SQLiteLedgerRepository{db: db}, nil
}

// Close releases the database.
func (it *SQLiteLedgerRepository) Close() error {
	return it.db.Close()
}

func (it *SQLiteLedgerRepository) FindRepository(
	ctx context.Context,
	owner, name string,
) (*entities.LedgerRepositoryRecord, error) {
	record := &entities.LedgerRepositoryRecord{}
	err := it.db.QueryRowContext(ctx,
		`SELECT id, owner, name, is_forked FROM repositories WHERE owner = ? AND name = ?`,
		owner, name,
	).Scan(&record.ID, &record.Owner, &record.Name, &record.IsForked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ledger has no row for %s/%s", entities.ErrNotFound, owner, name)
	}
	if err != nil {
		return nil, fmt.Errorf("find repository %s/%s: %w", owner, name, err)
	}
	return record, nil
}

func (it *SQLiteLedgerRepository) FindProposals(
	ctx context.Context,
	repositoryID int64,
) ([]entities.LedgerProposalRecord, error) {
	rows, err := it.db.QueryContext(ctx,
		`SELECT id, repository_id, kind, url, number, state, merged
		FROM pull_requests WHERE repository_id = ? ORDER BY id`,
		repositoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("find proposals of %d: %w", repositoryID, err)
	}
	defer rows.Close()

	var proposals []entities.LedgerProposalRecord
	for rows.Next() {
		proposal, scanErr := scanProposal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		proposals = append(proposals, proposal)
	}
	return proposals, rows.Err()
}

func (it *SQLiteLedgerRepository) UpsertRepository(
	ctx context.Context,
	owner, name string,
	isForked bool,
) (*entities.LedgerRepositoryRecord, error) {
	record := &entities.LedgerRepositoryRecord{}
	err := it.db.QueryRowContext(ctx,
		`INSERT INTO repositories (owner, name, is_forked) VALUES (?, ?, ?)
		ON CONFLICT(owner, name) DO UPDATE SET is_forked = excluded.is_forked, updated_at = CURRENT_TIMESTAMP
		RETURNING id, owner, name, is_forked`,
		owner, name, isForked,
	).Scan(&record.ID, &record.Owner, &record.Name, &record.IsForked)
	if err != nil {
		return nil, fmt.Errorf("upsert repository %s/%s: %w", owner, name, err)
	}
	return record, nil
}

func (it *SQLiteLedgerRepository) AppendProposal(
	ctx context.Context,
	record entities.LedgerProposalRecord,
) (*entities.LedgerProposalRecord, error) {
	if record.State == "" {
		record.State = entities.StateOpened
	}
	err := it.db.QueryRowContext(ctx,
		`INSERT INTO pull_requests (repository_id, kind, url, number, state, merged)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		record.RepositoryID, string(record.Kind), record.PullRequestURL, record.PullRequestNumber,
		string(record.State), record.Merged,
	).Scan(&record.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf(
				"%w: repository %d already has a live %s proposal", entities.ErrConflict, record.RepositoryID, record.Kind,
			)
		}
		return nil, fmt.Errorf("append proposal: %w", err)
	}
	return &record, nil
}

func (it *SQLiteLedgerRepository) ListOpenProposals(ctx context.Context) ([]entities.TrackedProposal, error) {
	rows, err := it.db.QueryContext(ctx,
		`SELECT p.id, p.repository_id, p.kind, p.url, p.number, p.state, p.merged,
			r.id, r.owner, r.name, r.is_forked
		FROM pull_requests p JOIN repositories r ON r.id = p.repository_id
		WHERE p.state <> ? ORDER BY p.id`,
		string(entities.StateClosed),
	)
	if err != nil {
		return nil, fmt.Errorf("list open proposals: %w", err)
	}
	defer rows.Close()

	var tracked []entities.TrackedProposal
	for rows.Next() {
		var (
			item        entities.TrackedProposal
			kind, state string
		)
		if err = rows.Scan(
			&item.Proposal.ID, &item.Proposal.RepositoryID, &kind, &item.Proposal.PullRequestURL,
			&item.Proposal.PullRequestNumber, &state, &item.Proposal.Merged,
			&item.Repository.ID, &item.Repository.Owner, &item.Repository.Name, &item.Repository.IsForked,
		); err != nil {
			return nil, fmt.Errorf("scan open proposal: %w", err)
		}
		item.Proposal.Kind = entities.RemediationKind(kind)
		item.Proposal.State = entities.ProposalState(state)
		tracked = append(tracked, item)
	}
	return tracked, rows.Err()
}

func (it *SQLiteLedgerRepository) UpdateProposal(
	ctx context.Context,
	id int64,
	state entities.ProposalState,
	merged bool,
) error {
	result, err := it.db.ExecContext(ctx,
		`UPDATE pull_requests SET state = ?, merged = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(state), merged, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reopening proposal %d", entities.ErrConflict, id)
		}
		return fmt.Errorf("update proposal %d: %w", id, err)
	}
	return requireAffected(result, "proposal", id)
}

func (it *SQLiteLedgerRepository) ListForkedRepositories(
	ctx context.Context,
) ([]entities.LedgerRepositoryRecord, error) {
	rows, err := it.db.QueryContext(ctx,
		`SELECT id, owner, name, is_forked FROM repositories WHERE is_forked = TRUE ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list forked repositories: %w", err)
	}
	defer rows.Close()

	var records []entities.LedgerRepositoryRecord
	for rows.Next() {
		var record entities.LedgerRepositoryRecord
		if err = rows.Scan(&record.ID, &record.Owner, &record.Name, &record.IsForked); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (it *SQLiteLedgerRepository) SetForked(ctx context.Context, repositoryID int64, isForked bool) error {
	result, err := it.db.ExecContext(ctx,
		`UPDATE repositories SET is_forked = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		isForked, repositoryID,
	)
	if err != nil {
		return fmt.Errorf("set forked on %d: %w", repositoryID, err)
	}
	return requireAffected(result, "repository", repositoryID)
}

func scanProposal(rows *sql.Rows) (entities.LedgerProposalRecord, error) {
	var (
		proposal    entities.LedgerProposalRecord
		kind, state string
	)
	if err := rows.Scan(
		&proposal.ID, &proposal.RepositoryID, &kind, &proposal.PullRequestURL,
		&proposal.PullRequestNumber, &state, &proposal.Merged,
	); err != nil {
		return proposal, fmt.Errorf("scan proposal: %w", err)
	}
	proposal.Kind = entities.RemediationKind(kind)
	proposal.State = entities.ProposalState(state)
	return proposal, nil
}

func requireAffected(result sql.Result, what string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %d", entities.ErrNotFound, what, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// redact hides the query string, which may carry credentials.
func redact(dsn string) string {
	if before, _, found := strings.Cut(dsn, "?"); found {
		return before + "?..."
	}
	return dsn
}
