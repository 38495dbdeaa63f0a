package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		provider VARCHAR(50) NOT NULL,
		provider_id VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(provider, provider_id)
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_agent VARCHAR(500),
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		revoked_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS organizations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		icon VARCHAR(100) NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		current_sprint_id UUID,
		next_sprint_id UUID,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CHECK (current_sprint_id IS NULL OR next_sprint_id IS NULL OR current_sprint_id <> next_sprint_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_to_team (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		role SMALLINT NOT NULL CHECK (role BETWEEN 0 AND 3),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (user_id, team_id)
	)`,

	`CREATE TABLE IF NOT EXISTS sprints (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE (id, team_id)
	)`,

	// Sprint pointers must reference a sprint of the same team.
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'teams_current_sprint_fk') THEN
			ALTER TABLE teams ADD CONSTRAINT teams_current_sprint_fk
				FOREIGN KEY (current_sprint_id, id) REFERENCES sprints(id, team_id) ON DELETE SET NULL (current_sprint_id);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'teams_next_sprint_fk') THEN
			ALTER TABLE teams ADD CONSTRAINT teams_next_sprint_fk
				FOREIGN KEY (next_sprint_id, id) REFERENCES sprints(id, team_id) ON DELETE SET NULL (next_sprint_id);
		END IF;
	END $$`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		sprint_id UUID,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'OPEN',
		priority VARCHAR(10) NOT NULL DEFAULT 'NONE',
		assignee_id UUID REFERENCES users(id) ON DELETE SET NULL,
		reporter_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		FOREIGN KEY (sprint_id, team_id) REFERENCES sprints(id, team_id) ON DELETE SET NULL (sprint_id)
	)`,

	`CREATE TABLE IF NOT EXISTS team_invites (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		email VARCHAR(255) NOT NULL,
		role SMALLINT NOT NULL CHECK (role BETWEEN 0 AND 3),
		invited_by UUID REFERENCES users(id) ON DELETE SET NULL,
		email_sent_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_team_invites_team_email ON team_invites(team_id, lower(email))`,

	`CREATE TABLE IF NOT EXISTS wiki_pages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1,
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		updated_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_organization_id ON teams(organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_to_team_team_id ON user_to_team(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sprints_team_id ON sprints(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_team_id ON tickets(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_sprint_id ON tickets(sprint_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_assignee_id ON tickets(assignee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_invites_email ON team_invites(lower(email))`,
	`CREATE INDEX IF NOT EXISTS idx_wiki_pages_team_id ON wiki_pages(team_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
