//nolint:testpackage // Testing internal repository requires same package access
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/logger"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, setupErr := sqlmock.New()
	if setupErr != nil {
		t.Fatalf("failed to create sqlmock: %v", setupErr)
	}

	repo := NewRepository(sqlx.NewDb(db, "sqlmock"), logger.NewNoOp())
	return repo, mock, func() { db.Close() }
}

func tournamentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "sport", "level", "date_info", "registration_deadline", "venue", "link",
		"streaming_links", "summary", "entry_fees", "contact_information", "eligibility", "prizes",
		"confidence_score", "source_url", "source_sport", "source_level", "created_at", "updated_at",
	})
}

func sampleRow(rows *sqlmock.Rows, id int64, name string, confidence float64) *sqlmock.Rows {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, name, "Badminton", "State",
		pq.Array([]string{"March 2026"}), "", pq.Array([]string{"Pune"}), "",
		"", "State level event", "", pq.Array([]string{}), pq.Array([]string{}), pq.Array([]string{}),
		confidence, "badminton state tournament", "Badminton", "State", now, now,
	)
}

func TestRepository_Insert(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO tournaments").
		WithArgs(
			"State Open", "Badminton", "State",
			sqlmock.AnyArg(), "", sqlmock.AnyArg(), "",
			"", "Summary", "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			0.9, "badminton state tournament", "Badminton", "State",
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	tournament := &domain.Tournament{
		Name:            "State Open",
		Sport:           "Badminton",
		Level:           "State",
		DateInfo:        []string{"March 2026"},
		Venue:           []string{"Pune"},
		Summary:         "Summary",
		ConfidenceScore: 0.9,
		SourceURL:       "badminton state tournament",
		SourceSport:     "Badminton",
		SourceLevel:     "State",
	}

	id, insertErr := repo.Insert(context.Background(), tournament)
	if insertErr != nil {
		t.Errorf("Insert() error = %v", insertErr)
	}
	if id != 7 {
		t.Errorf("Insert() id = %d, want 7", id)
	}
	if tournament.CreatedAt.IsZero() {
		t.Error("Insert() did not populate created_at")
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestRepository_ExistsFound(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("SELECT id FROM tournaments").
		WithArgs("State Open", "Badminton", "State").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	id, exists, err := repo.Exists(context.Background(), "State Open", "Badminton", "State")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if !exists || id != 3 {
		t.Errorf("Exists() = (%d, %v), want (3, true)", id, exists)
	}
}

func TestRepository_ExistsNotFound(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("SELECT id FROM tournaments").
		WithArgs("Unknown", "Badminton", "State").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, exists, err := repo.Exists(context.Background(), "Unknown", "Badminton", "State")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true, want false")
	}
}

func TestRepository_InsertBatchCountsDuplicates(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// First record is new.
	mock.ExpectQuery("SELECT id FROM tournaments").
		WithArgs("New Event", "Badminton", "State").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("INSERT INTO tournaments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

	// Second record already exists.
	mock.ExpectQuery("SELECT id FROM tournaments").
		WithArgs("Old Event", "Badminton", "State").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	tournaments := []domain.Tournament{
		{Name: "New Event", Sport: "Badminton", Level: "State"},
		{Name: "Old Event", Sport: "Badminton", Level: "State"},
	}
	stats := repo.InsertBatch(context.Background(), tournaments)

	if stats.Processed != 2 || stats.Inserted != 1 || stats.Duplicates != 1 || stats.Failed != 0 {
		t.Errorf("InsertBatch() stats = %+v", stats)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestRepository_ListWithFilters(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	minConfidence := 0.8

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tournaments`).
		WithArgs("Badminton", "State", minConfidence).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("(?s)SELECT (.+) FROM tournaments WHERE sport").
		WithArgs("Badminton", "State", minConfidence, 50, 0).
		WillReturnRows(sampleRow(tournamentRows(), 1, "State Open", 0.9))

	tournaments, total, err := repo.List(context.Background(), ListFilter{
		Sport:         "Badminton",
		Level:         "State",
		MinConfidence: &minConfidence,
		Limit:         50,
	})
	if err != nil {
		t.Errorf("List() error = %v", err)
	}
	if total != 1 {
		t.Errorf("List() total = %d, want 1", total)
	}
	if len(tournaments) != 1 || tournaments[0].Name != "State Open" {
		t.Errorf("List() tournaments = %+v", tournaments)
	}
	if len(tournaments) > 0 && tournaments[0].DateInfo[0] != "March 2026" {
		t.Errorf("List() date_info = %v", tournaments[0].DateInfo)
	}
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("(?s)SELECT (.+) FROM tournaments WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(tournamentRows())

	_, err := repo.GetByID(context.Background(), 42)
	if err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_Search(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("(?s)SELECT (.+) FROM tournaments").
		WithArgs("%open%", 20).
		WillReturnRows(sampleRow(tournamentRows(), 2, "State Open", 0.85))

	tournaments, err := repo.Search(context.Background(), "open", 20)
	if err != nil {
		t.Errorf("Search() error = %v", err)
	}
	if len(tournaments) != 1 || tournaments[0].ID != 2 {
		t.Errorf("Search() tournaments = %+v", tournaments)
	}
}

func TestRepository_InsertRunStats(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	runDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO pipeline_statistics").
		WithArgs(108, 300, 15, 12, 0.82, runDate, 95).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.InsertRunStats(context.Background(), &domain.RunStats{
		TotalQueries:              108,
		TotalSearchResults:        300,
		TotalScrapedPages:         15,
		TotalTournamentsExtracted: 12,
		AverageConfidenceScore:    0.82,
		RunDate:                   runDate,
		ExecutionTimeSeconds:      95,
	})
	if err != nil {
		t.Errorf("InsertRunStats() error = %v", err)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestRepository_LogSearch(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectExec("INSERT INTO search_logs").
		WithArgs("badminton state tournament", "Badminton", "State", 12, 1.5, true, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.LogSearch(context.Background(), &SearchLog{
		Query:         "badminton state tournament",
		Sport:         "Badminton",
		Level:         "State",
		ResultsFound:  12,
		ExecutionTime: 1.5,
		Success:       true,
	})
	if err != nil {
		t.Errorf("LogSearch() error = %v", err)
	}
}
