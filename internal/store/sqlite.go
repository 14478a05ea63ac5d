package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperengineering/aequiflow/internal/types"
	_ "modernc.org/sqlite"
)

// MemoryPath selects an ephemeral database seeded with the demo dataset.
const MemoryPath = ":memory:"

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// LoadSQLite opens the SQLite seed database at dbPath, applies pending
// migrations, reads every collection and returns the resulting Dataset.
// The database is closed before returning; the Dataset lives in memory.
func LoadSQLite(ctx context.Context, dbPath string) (*Dataset, error) {
	if dbPath != MemoryPath {
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	seed, err := readSeed(ctx, db)
	if err != nil {
		return nil, err
	}

	return NewDataset(seed)
}

// enablePragmas sets SQLite pragmas for safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

func readSeed(ctx context.Context, db *sql.DB) (Seed, error) {
	var seed Seed
	var err error

	if seed.Projects, err = readProjects(ctx, db); err != nil {
		return Seed{}, fmt.Errorf("read projects: %w", err)
	}
	if seed.Reports, err = readReports(ctx, db); err != nil {
		return Seed{}, fmt.Errorf("read reports: %w", err)
	}
	if seed.ValidationItems, err = readValidationItems(ctx, db); err != nil {
		return Seed{}, fmt.Errorf("read validation items: %w", err)
	}
	if seed.Stats, err = readStats(ctx, db); err != nil {
		return Seed{}, fmt.Errorf("read dashboard stats: %w", err)
	}

	return seed, nil
}

func readProjects(ctx context.Context, db *sql.DB) ([]types.Project, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description, location, region, lat, lng, status, budget, disbursed,
		       progress, validation_score, validation_count, start_date, target_date, contractor, agency
		FROM projects ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []types.Project
	index := make(map[string]int)
	for rows.Next() {
		var p types.Project
		var status, start, target string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Location, &p.Region,
			&p.Coordinates.Lat, &p.Coordinates.Lng, &status, &p.Budget, &p.Disbursed,
			&p.Progress, &p.ValidationScore, &p.ValidationCount, &start, &target,
			&p.Contractor, &p.Agency); err != nil {
			return nil, err
		}
		p.Status = types.ProjectStatus(status)
		if p.StartDate, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("%w: project %s start date: %v", ErrInvalidSeed, p.ID, err)
		}
		if p.TargetDate, err = time.Parse(dateLayout, target); err != nil {
			return nil, fmt.Errorf("%w: project %s target date: %v", ErrInvalidSeed, p.ID, err)
		}
		index[p.ID] = len(projects)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := readTimelines(ctx, db, projects, index); err != nil {
		return nil, err
	}
	if err := readPhotos(ctx, db, projects, index); err != nil {
		return nil, err
	}
	return projects, nil
}

func readTimelines(ctx context.Context, db *sql.DB, projects []types.Project, index map[string]int) error {
	rows, err := db.QueryContext(ctx, `
		SELECT project_id, id, event_date, title, description, status
		FROM timeline_events ORDER BY rowid
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, date, status string
		var e types.TimelineEvent
		if err := rows.Scan(&projectID, &e.ID, &date, &e.Title, &e.Description, &status); err != nil {
			return err
		}
		if e.Date, err = time.Parse(dateLayout, date); err != nil {
			return fmt.Errorf("%w: timeline %s/%s date: %v", ErrInvalidSeed, projectID, e.ID, err)
		}
		e.Status = types.TimelineStatus(status)
		i, ok := index[projectID]
		if !ok {
			continue
		}
		projects[i].Timeline = append(projects[i].Timeline, e)
	}
	return rows.Err()
}

func readPhotos(ctx context.Context, db *sql.DB, projects []types.Project, index map[string]int) error {
	rows, err := db.QueryContext(ctx, `
		SELECT project_id, id, url, caption, taken_at, gps_coordinates,
		       ai_validated, community_validated, validation_count
		FROM project_photos ORDER BY rowid
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, takenAt string
		var ph types.ProjectPhoto
		if err := rows.Scan(&projectID, &ph.ID, &ph.URL, &ph.Caption, &takenAt, &ph.GPSCoordinates,
			&ph.AIValidated, &ph.CommunityValidated, &ph.ValidationCount); err != nil {
			return err
		}
		if ph.Timestamp, err = time.Parse(timestampLayout, takenAt); err != nil {
			return fmt.Errorf("%w: photo %s/%s timestamp: %v", ErrInvalidSeed, projectID, ph.ID, err)
		}
		i, ok := index[projectID]
		if !ok {
			continue
		}
		projects[i].Photos = append(projects[i].Photos, ph)
	}
	return rows.Err()
}

func readReports(ctx context.Context, db *sql.DB) ([]types.Report, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, project_id, type, description, status, created_at, location, has_photo
		FROM reports ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []types.Report
	for rows.Next() {
		var r types.Report
		var projectID sql.NullString
		var reportType, status, createdAt string
		if err := rows.Scan(&r.ID, &projectID, &reportType, &r.Description, &status,
			&createdAt, &r.Location, &r.HasPhoto); err != nil {
			return nil, err
		}
		r.ProjectID = projectID.String
		r.Type = types.ReportType(reportType)
		r.Status = types.ReportStatus(status)
		if r.CreatedAt, err = time.Parse(dateLayout, createdAt); err != nil {
			return nil, fmt.Errorf("%w: report %s created_at: %v", ErrInvalidSeed, r.ID, err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func readValidationItems(ctx context.Context, db *sql.DB) ([]types.ValidationItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, project_id, project_name, type, description, photo_url, observed_at,
		       location, confirm_count, flag_count
		FROM validation_items ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []types.ValidationItem
	for rows.Next() {
		var item types.ValidationItem
		var photoURL sql.NullString
		var itemType, observedAt string
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.ProjectName, &itemType, &item.Description,
			&photoURL, &observedAt, &item.Location, &item.ConfirmCount, &item.FlagCount); err != nil {
			return nil, err
		}
		item.Type = types.ValidationType(itemType)
		item.PhotoURL = photoURL.String
		if item.Timestamp, err = time.Parse(timestampLayout, observedAt); err != nil {
			return nil, fmt.Errorf("%w: validation item %s timestamp: %v", ErrInvalidSeed, item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func readStats(ctx context.Context, db *sql.DB) (types.DashboardStats, error) {
	var s types.DashboardStats
	err := db.QueryRowContext(ctx, `
		SELECT total_projects, ongoing_projects, completed_projects, delayed_projects,
		       total_budget, total_disbursed, total_reports, pending_reports, average_validation
		FROM dashboard_stats WHERE id = 1
	`).Scan(&s.TotalProjects, &s.OngoingProjects, &s.CompletedProjects, &s.DelayedProjects,
		&s.TotalBudget, &s.TotalDisbursed, &s.TotalReports, &s.PendingReports, &s.AverageValidation)
	if err == sql.ErrNoRows {
		return types.DashboardStats{}, nil
	}
	return s, err
}
