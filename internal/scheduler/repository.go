package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads scheduling input from and writes schedules back to
// PostgreSQL. It holds no domain logic of its own; Loader and Writer drive
// it.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps an open pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// dbtx is the subset of pgx's pool/transaction surface the read methods
// need. It is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// methods can run standalone or inside a caller-owned transaction.
type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// BeginSnapshot opens a read-only transaction at the repeatable-read
// isolation level, so a caller that issues several reads through it sees one
// consistent snapshot of resources, groups, calendar, jobs, and tasks rather
// than whatever each query happens to observe independently.
func (r *Repository) BeginSnapshot(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	return tx, nil
}

// Resources returns every schedulable resource.
func (r *Repository) Resources(ctx context.Context, db dbtx) ([]Resource, error) {
	rows, err := db.Query(ctx, `SELECT id, name, type FROM resource ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var out []Resource
	for rows.Next() {
		var res Resource
		var kind string
		if err := rows.Scan(&res.ID, &res.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		res.Kind = ResourceKind(kind)
		out = append(out, res)
	}
	return out, rows.Err()
}

// ResourceGroups returns every resource group with its members in
// association order.
func (r *Repository) ResourceGroups(ctx context.Context, db dbtx) ([]ResourceGroup, error) {
	rows, err := db.Query(ctx, `SELECT id, name FROM resource_group ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query resource groups: %w", err)
	}

	groups := make(map[int64]*ResourceGroup)
	var order []int64
	for rows.Next() {
		var g ResourceGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan resource group: %w", err)
		}
		groups[g.ID] = &g
		order = append(order, g.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberRows, err := db.Query(ctx, `
		SELECT group_id, resource_id
		FROM resource_group_association
		ORDER BY group_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query resource group members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var groupID, resourceID int64
		if err := memberRows.Scan(&groupID, &resourceID); err != nil {
			return nil, fmt.Errorf("scan resource group member: %w", err)
		}
		if g, ok := groups[groupID]; ok {
			g.MemberIDs = append(g.MemberIDs, resourceID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}

	out := make([]ResourceGroup, 0, len(order))
	for _, id := range order {
		out = append(out, *groups[id])
	}
	return out, nil
}

// Calendar returns the working-hours entry for every configured weekday.
func (r *Repository) Calendar(ctx context.Context, db dbtx) ([]CalendarEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT weekday,
		       EXTRACT(HOUR FROM start_time)::int * 60 + EXTRACT(MINUTE FROM start_time)::int,
		       EXTRACT(HOUR FROM end_time)::int * 60 + EXTRACT(MINUTE FROM end_time)::int
		FROM calendar
		ORDER BY weekday`)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}
	defer rows.Close()

	var out []CalendarEntry
	for rows.Next() {
		var entry CalendarEntry
		if err := rows.Scan(&entry.Weekday, &entry.Open, &entry.Close); err != nil {
			return nil, fmt.Errorf("scan calendar entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// EligibleJobs returns jobs that are neither completed nor blocked.
func (r *Repository) EligibleJobs(ctx context.Context, db dbtx) ([]Job, error) {
	rows, err := db.Query(ctx, `
		SELECT id, job_number, quantity, completed, blocked
		FROM job
		WHERE completed = FALSE AND blocked = FALSE
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.JobNumber, &j.Quantity, &j.Completed, &j.Blocked); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// EligibleTasks returns the non-completed tasks belonging to the given jobs.
func (r *Repository) EligibleTasks(ctx context.Context, db dbtx, jobNumbers []string) ([]Task, error) {
	if len(jobNumbers) == 0 {
		return nil, nil
	}

	rows, err := db.Query(ctx, `
		SELECT id, job_number, task_number, setup_time, time_each, predecessors, resources, completed
		FROM task
		WHERE completed = FALSE AND job_number = ANY($1)
		ORDER BY job_number, task_number`, jobNumbers)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		var predecessors, resources string
		if err := rows.Scan(&t.ID, &t.JobNumber, &t.TaskNumber, &t.SetupTime, &t.TimeEach, &predecessors, &resources, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Predecessors = splitTrimmed(predecessors)
		t.Resources = splitTrimmed(resources)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReplaceSchedule atomically clears the schedule table and inserts entries,
// so that a run that fails partway never leaves a mixed-generation schedule
// visible to readers.
func (r *Repository) ReplaceSchedule(ctx context.Context, entries []ScheduleEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.replaceScheduleWithTx(ctx, tx, entries); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) replaceScheduleWithTx(ctx context.Context, tx pgx.Tx, entries []ScheduleEntry) error {
	if _, err := tx.Exec(ctx, `DELETE FROM schedule`); err != nil {
		return fmt.Errorf("clear schedule: %w", err)
	}

	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO schedule (task_number, start_time, end_time, resources_used)
			VALUES ($1, $2, $3, $4)`,
			e.TaskNumber, e.Start, e.End, e.ResourcesUsed)
		if err != nil {
			return fmt.Errorf("insert schedule entry %s: %w", e.TaskNumber, err)
		}
	}

	return nil
}

func splitTrimmed(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, field := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
