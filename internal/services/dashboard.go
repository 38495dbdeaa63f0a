package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	db *database.DB
}

func NewDashboardService(db *database.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Summary aggregates a team's board for one user. The independent queries
// run concurrently on the pool.
func (s *DashboardService) Summary(ctx context.Context, teamID, userID uuid.UUID) (*models.Dashboard, error) {
	dash := &models.Dashboard{
		TeamID:         teamID,
		StatusCounts:   make(map[string]int, len(models.TicketStatuses)),
		AssignedToUser: []models.Ticket{},
	}
	for _, status := range models.TicketStatuses {
		dash.StatusCounts[status] = 0
	}

	var (
		counts   map[string]int
		backlog  int
		progress *models.SprintProgress
		assigned []models.Ticket
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = s.statusCounts(gctx, teamID)
		return err
	})
	g.Go(func() error {
		return s.db.Pool.QueryRow(gctx, `
			SELECT COUNT(*) FROM tickets WHERE team_id = $1 AND sprint_id IS NULL
		`, teamID).Scan(&backlog)
	})
	g.Go(func() (err error) {
		progress, err = s.currentProgress(gctx, teamID)
		return err
	})
	g.Go(func() (err error) {
		assigned, err = s.assignedOpen(gctx, teamID, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	for status, n := range counts {
		dash.StatusCounts[status] = n
	}
	dash.BacklogSize = backlog
	dash.CurrentSprint = progress
	if assigned != nil {
		dash.AssignedToUser = assigned
	}
	return dash, nil
}

func (s *DashboardService) statusCounts(ctx context.Context, teamID uuid.UUID) (map[string]int, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT status, COUNT(*) FROM tickets WHERE team_id = $1 GROUP BY status
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// currentProgress returns nil when the team has no current sprint.
func (s *DashboardService) currentProgress(ctx context.Context, teamID uuid.UUID) (*models.SprintProgress, error) {
	var p models.SprintProgress
	err := s.db.Pool.QueryRow(ctx, `
		SELECT s.id, s.title,
		       COUNT(tk.id),
		       COUNT(tk.id) FILTER (WHERE tk.status = $2)
		FROM teams t
		JOIN sprints s ON s.id = t.current_sprint_id
		LEFT JOIN tickets tk ON tk.sprint_id = s.id
		WHERE t.id = $1
		GROUP BY s.id, s.title
	`, teamID, models.TicketStatusClosed).Scan(&p.SprintID, &p.Title, &p.Total, &p.Closed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *DashboardService) assignedOpen(ctx context.Context, teamID, userID uuid.UUID) ([]models.Ticket, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE team_id = $1 AND assignee_id = $2 AND status <> $3
		ORDER BY updated_at DESC
	`, teamID, userID, models.TicketStatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
