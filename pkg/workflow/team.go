// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/zscan"
)

// DefaultTeamName is the fallback team every account has.
const DefaultTeamName = "Default"

// SelectTeam picks the team named name, falling back to DefaultTeamName
// when name is not found. Names compare exactly.
func SelectTeam(teams []zscan.Team, name string) (zscan.Team, bool) {
	if team, ok := findTeam(teams, name); ok {
		return team, true
	}
	if name != DefaultTeamName {
		return findTeam(teams, DefaultTeamName)
	}
	return zscan.Team{}, false
}

func findTeam(teams []zscan.Team, name string) (zscan.Team, bool) {
	for _, t := range teams {
		if t.Name == name {
			return t, true
		}
	}
	return zscan.Team{}, false
}

// assignTeam waits for the server to settle, then assigns appID to the
// configured team (or the default team). Errors are for logging only,
// except a cancelled context.
func (o *Orchestrator) assignTeam(ctx context.Context, logger zerolog.Logger, appID string) error {
	if appID == "" {
		logger.Warn().Msg("Application does not belong to a team and has no app id. Skipping team assignment.")
		return ErrMissingAppID
	}

	logger.Info().
		Str("app_id", appID).
		Str("team", o.settings.TeamName).
		Msg("Application does not belong to a team. Assigning it.")

	// Listing right after upload can miss the new app.
	if err := o.clock.Sleep(ctx, o.settings.SettleDelay); err != nil {
		return err
	}

	teams, err := o.service.ListTeams(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Unable to assign this app to a team. Please review team name setting and credentials, and retry.")
		return fmt.Errorf("list teams: %w", err)
	}
	logger.Info().Int("teams", len(teams)).Msg("Found teams")

	team, ok := SelectTeam(teams, o.settings.TeamName)
	if !ok {
		logger.Warn().
			Str("team", o.settings.TeamName).
			Msg("Unable to assign this app to a team. Neither the configured team nor the Default team exists.")
		return fmt.Errorf("%w: %s", ErrTeamNotFound, o.settings.TeamName)
	}
	if team.Name != o.settings.TeamName {
		logger.Info().
			Str("team", o.settings.TeamName).
			Str("team_id", team.ID).
			Msg("Team not found. Using the Default team.")
	}

	if err := o.service.AssignAppToTeam(ctx, appID, team.ID); err != nil {
		logger.Warn().Err(err).Msg("Unable to assign this app to a team. Please review team name setting and retry.")
		return fmt.Errorf("assign team: %w", err)
	}
	return nil
}
