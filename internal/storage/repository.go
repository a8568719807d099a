package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/logger"
)

// ErrNotFound is returned when a tournament lookup matches no row.
var ErrNotFound = errors.New("tournament not found")

const tournamentColumns = `id, name, sport, level, date_info, registration_deadline, venue, link,
	streaming_links, summary, entry_fees, contact_information, eligibility, prizes,
	confidence_score, source_url, source_sport, source_level, created_at, updated_at`

// ListFilter narrows a tournament listing.
type ListFilter struct {
	Sport         string
	Level         string
	MinConfidence *float64
	Limit         int
	Offset        int
}

// SearchLog is one row of the search audit table.
type SearchLog struct {
	Query         string
	Sport         string
	Level         string
	ResultsFound  int
	ExecutionTime float64
	Success       bool
	ErrorMessage  string
}

// Statistics is the aggregate view served by the statistics endpoint.
type Statistics struct {
	TotalTournaments  int            `json:"total_tournaments"`
	AverageConfidence float64        `json:"average_confidence"`
	BySport           map[string]int `json:"by_sport"`
	ByLevel           map[string]int `json:"by_level"`
	RecentTournaments int            `json:"recent_tournaments"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// Repository handles database operations for tournament records.
type Repository struct {
	db     *sqlx.DB
	logger logger.Interface
}

// NewRepository creates a new tournament repository.
func NewRepository(db *sqlx.DB, log logger.Interface) *Repository {
	return &Repository{
		db:     db,
		logger: log.WithComponent("storage"),
	}
}

// Ping verifies the database connection is alive.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Exists reports whether a tournament with the same (name, sport, level)
// key is already stored, returning its id when it is.
func (r *Repository) Exists(ctx context.Context, name, sport, level string) (int64, bool, error) {
	var id int64
	query := `SELECT id FROM tournaments WHERE name = $1 AND sport = $2 AND level = $3`

	err := r.db.QueryRowContext(ctx, query, name, sport, level).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	return id, true, nil
}

// Insert stores one tournament and returns its assigned id.
func (r *Repository) Insert(ctx context.Context, t *domain.Tournament) (int64, error) {
	query := `
		INSERT INTO tournaments (
			name, sport, level, date_info, registration_deadline, venue, link,
			streaming_links, summary, entry_fees, contact_information, eligibility, prizes,
			confidence_score, source_url, source_sport, source_level
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		t.Name,
		t.Sport,
		t.Level,
		pq.Array(t.DateInfo),
		t.RegistrationDeadline,
		pq.Array(t.Venue),
		t.Link,
		t.StreamingLinks,
		t.Summary,
		t.EntryFees,
		pq.Array(t.ContactInformation),
		pq.Array(t.Eligibility),
		pq.Array(t.Prizes),
		t.ConfidenceScore,
		t.SourceURL,
		t.SourceSport,
		t.SourceLevel,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return 0, fmt.Errorf("failed to insert tournament: %w", err)
	}
	return t.ID, nil
}

// InsertBatch stores tournaments one by one, counting duplicates and
// failures instead of aborting. The unique constraint backstops the
// exists check against concurrent writers.
func (r *Repository) InsertBatch(ctx context.Context, tournaments []domain.Tournament) domain.InsertStats {
	stats := domain.InsertStats{Processed: len(tournaments)}

	for i := range tournaments {
		t := &tournaments[i]

		id, exists, err := r.Exists(ctx, t.Name, t.Sport, t.Level)
		if err != nil {
			stats.Failed++
			r.logger.Error("Duplicate check failed", "name", t.Name, "error", err)
			continue
		}
		if exists {
			stats.Duplicates++
			r.logger.Info("Duplicate tournament skipped", "name", t.Name, "id", id)
			continue
		}

		if _, insertErr := r.Insert(ctx, t); insertErr != nil {
			if isUniqueViolation(insertErr) {
				stats.Duplicates++
				continue
			}
			stats.Failed++
			r.logger.Error("Insert failed", "name", t.Name, "error", insertErr)
			continue
		}
		stats.Inserted++
		r.logger.Info("Inserted tournament", "name", t.Name, "id", t.ID)
	}
	return stats
}

// List retrieves tournaments matching the filter, ordered by confidence
// then recency, along with the total matching count before pagination.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]domain.Tournament, int, error) {
	var where []string
	var args []any
	argIndex := 1

	if filter.Sport != "" {
		where = append(where, fmt.Sprintf("sport = $%d", argIndex))
		args = append(args, filter.Sport)
		argIndex++
	}
	if filter.Level != "" {
		where = append(where, fmt.Sprintf("level = $%d", argIndex))
		args = append(args, filter.Level)
		argIndex++
	}
	if filter.MinConfidence != nil {
		where = append(where, fmt.Sprintf("confidence_score >= $%d", argIndex))
		args = append(args, *filter.MinConfidence)
		argIndex++
	}

	var whereClause string
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM tournaments" + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tournaments: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM tournaments%s ORDER BY confidence_score DESC, created_at DESC LIMIT $%d OFFSET $%d",
		tournamentColumns, whereClause, argIndex, argIndex+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	tournaments, err := r.queryTournaments(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return tournaments, total, nil
}

// GetByID retrieves one tournament by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Tournament, error) {
	query := fmt.Sprintf("SELECT %s FROM tournaments WHERE id = $1", tournamentColumns)

	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTournament(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return t, nil
}

// Search matches tournaments by name, summary, or venue text,
// case-insensitively.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]domain.Tournament, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tournaments
		WHERE name ILIKE $1 OR summary ILIKE $1 OR array_to_string(venue, ' ') ILIKE $1
		ORDER BY confidence_score DESC, created_at DESC
		LIMIT $2
	`, tournamentColumns)

	return r.queryTournaments(ctx, query, "%"+term+"%", limit)
}

// ListBySportLevel retrieves the best stored tournaments for one
// sport/level pair.
func (r *Repository) ListBySportLevel(ctx context.Context, sport, level string, limit int) ([]domain.Tournament, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tournaments
		WHERE sport = $1 AND level = $2
		ORDER BY confidence_score DESC, created_at DESC
		LIMIT $3
	`, tournamentColumns)

	return r.queryTournaments(ctx, query, sport, level, limit)
}

// CountBySportLevel reports how many tournaments are stored for a
// sport/level pair and when the newest was added.
func (r *Repository) CountBySportLevel(ctx context.Context, sport, level string) (int, *time.Time, error) {
	var count int
	var latest sql.NullTime
	query := `SELECT COUNT(*), MAX(created_at) FROM tournaments WHERE sport = $1 AND level = $2`

	if err := r.db.QueryRowContext(ctx, query, sport, level).Scan(&count, &latest); err != nil {
		return 0, nil, fmt.Errorf("failed to count tournaments: %w", err)
	}
	if !latest.Valid {
		return count, nil, nil
	}
	return count, &latest.Time, nil
}

// SportCounts groups stored tournaments by sport.
func (r *Repository) SportCounts(ctx context.Context) ([]domain.SportCount, error) {
	var counts []domain.SportCount
	query := `
		SELECT sport, COUNT(*) AS tournament_count,
		       ROUND(AVG(confidence_score)::numeric, 2) AS avg_confidence
		FROM tournaments
		GROUP BY sport
		ORDER BY tournament_count DESC
	`

	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to get sport counts: %w", err)
	}
	return counts, nil
}

// LevelCounts groups stored tournaments by level.
func (r *Repository) LevelCounts(ctx context.Context) ([]domain.LevelCount, error) {
	var counts []domain.LevelCount
	query := `
		SELECT level, COUNT(*) AS tournament_count,
		       ROUND(AVG(confidence_score)::numeric, 2) AS avg_confidence
		FROM tournaments
		GROUP BY level
		ORDER BY tournament_count DESC
	`

	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to get level counts: %w", err)
	}
	return counts, nil
}

// GetStatistics assembles the aggregate database view.
func (r *Repository) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		BySport:     make(map[string]int),
		ByLevel:     make(map[string]int),
		GeneratedAt: time.Now().UTC(),
	}

	var avgConfidence sql.NullFloat64
	query := `SELECT COUNT(*), ROUND(COALESCE(AVG(confidence_score), 0)::numeric, 2) FROM tournaments`
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalTournaments, &avgConfidence); err != nil {
		return nil, fmt.Errorf("failed to get tournament totals: %w", err)
	}
	if avgConfidence.Valid {
		stats.AverageConfidence = avgConfidence.Float64
	}

	sportCounts, err := r.SportCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, sc := range sportCounts {
		stats.BySport[sc.Sport] = sc.TournamentCount
	}

	levelCounts, err := r.LevelCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, lc := range levelCounts {
		stats.ByLevel[lc.Level] = lc.TournamentCount
	}

	recentQuery := `SELECT COUNT(*) FROM tournaments WHERE created_at >= NOW() - INTERVAL '7 days'`
	if err := r.db.QueryRowContext(ctx, recentQuery).Scan(&stats.RecentTournaments); err != nil {
		return nil, fmt.Errorf("failed to count recent tournaments: %w", err)
	}

	return stats, nil
}

// InsertRunStats records one pipeline run in the statistics table.
func (r *Repository) InsertRunStats(ctx context.Context, stats *domain.RunStats) error {
	query := `
		INSERT INTO pipeline_statistics (
			total_queries, total_search_results, total_scraped_pages,
			total_tournaments_extracted, average_confidence_score,
			pipeline_run_date, execution_time_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		stats.TotalQueries,
		stats.TotalSearchResults,
		stats.TotalScrapedPages,
		stats.TotalTournamentsExtracted,
		stats.AverageConfidenceScore,
		stats.RunDate,
		stats.ExecutionTimeSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to save pipeline statistics: %w", err)
	}
	return nil
}

// LogSearch records one search request in the audit table.
func (r *Repository) LogSearch(ctx context.Context, entry *SearchLog) error {
	query := `
		INSERT INTO search_logs (query, sport, level, results_found, execution_time, success, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.Query,
		entry.Sport,
		entry.Level,
		entry.ResultsFound,
		entry.ExecutionTime,
		entry.Success,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTournament(row rowScanner) (*domain.Tournament, error) {
	var t domain.Tournament
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Sport,
		&t.Level,
		pq.Array(&t.DateInfo),
		&t.RegistrationDeadline,
		pq.Array(&t.Venue),
		&t.Link,
		&t.StreamingLinks,
		&t.Summary,
		&t.EntryFees,
		pq.Array(&t.ContactInformation),
		pq.Array(&t.Eligibility),
		pq.Array(&t.Prizes),
		&t.ConfidenceScore,
		&t.SourceURL,
		&t.SourceSport,
		&t.SourceLevel,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) queryTournaments(ctx context.Context, query string, args ...any) ([]domain.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []domain.Tournament
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", scanErr)
		}
		tournaments = append(tournaments, *t)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate tournaments: %w", rowsErr)
	}
	return tournaments, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
