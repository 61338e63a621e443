package service

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

type CreateTeamInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	LeadID      string   `json:"lead_id"`
	MemberIDs   []string `json:"member_ids"`
}

type UpdateTeamInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	LeadID      *string `json:"lead_id"`
}

type AddMemberInput struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=lead member"`
}

// TeamService manages teams of the actor's organization.
type TeamService interface {
	List(ctx context.Context, p Page) (*ListResult[model.Team], error)
	Create(ctx context.Context, in CreateTeamInput) (*model.Team, error)
	Get(ctx context.Context, id string) (*model.Team, error)
	Update(ctx context.Context, id string, in UpdateTeamInput) (*model.Team, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, id string, in AddMemberInput) (*model.Team, error)
	RemoveMember(ctx context.Context, id, userID string) (*model.Team, error)
}

type teamService struct {
	teams repository.TeamRepository
	users repository.UserRepository
	audit auditor
}

func NewTeamService(r Repositories, rec audit.Recorder, log *zap.Logger) TeamService {
	return &teamService{teams: r.Teams, users: r.Users, audit: newAuditor(rec, log)}
}

func teamOrg(t *model.Team) string { return t.OrganizationID }

func (s *teamService) List(ctx context.Context, p Page) (*ListResult[model.Team], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	pq := p.query()
	res, err := s.teams.List(ctx, repository.Filter{"organization_id": a.OrgID}, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}

func (s *teamService) Create(ctx context.Context, in CreateTeamInput) (*model.Team, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	ids := dedupe(in.MemberIDs)
	if in.LeadID != "" && !slices.Contains(ids, in.LeadID) {
		ids = append([]string{in.LeadID}, ids...)
	}
	if err := usersInOrg(ctx, s.users, a.OrgID, ids); err != nil {
		return nil, err
	}

	ts := now()
	t := &model.Team{
		ID:             newID(),
		Name:           in.Name,
		Description:    in.Description,
		OrganizationID: a.OrgID,
		LeadID:         in.LeadID,
		Members:        make([]model.TeamMember, 0, len(ids)),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	for _, id := range ids {
		role := "member"
		if id == in.LeadID {
			role = "lead"
		}
		t.Members = append(t.Members, model.TeamMember{UserID: id, Role: role, JoinedAt: ts})
	}
	created, err := s.teams.Create(ctx, t)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionCreate, "team", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

func (s *teamService) Get(ctx context.Context, id string) (*model.Team, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return inOrg(ctx, s.teams, id, a.OrgID, teamOrg)
}

func (s *teamService) Update(ctx context.Context, id string, in UpdateTeamInput) (*model.Team, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	cur, err := inOrg(ctx, s.teams, id, a.OrgID, teamOrg)
	if err != nil {
		return nil, err
	}
	set := repository.Fields{"updated_at": now()}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.LeadID != nil {
		if *in.LeadID != "" && !cur.HasMember(*in.LeadID) {
			return nil, invalid("the team lead must be a member of the team")
		}
		set["lead_id"] = *in.LeadID
		members := make([]model.TeamMember, len(cur.Members))
		for i, m := range cur.Members {
			m.Role = "member"
			if m.UserID == *in.LeadID {
				m.Role = "lead"
			}
			members[i] = m
		}
		set["members"] = members
	}
	t, err := s.teams.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "team", id, nil)
	return t, nil
}

func (s *teamService) Delete(ctx context.Context, id string) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	if _, err := inOrg(ctx, s.teams, id, a.OrgID, teamOrg); err != nil {
		return err
	}
	if err := s.teams.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionDelete, "team", id, nil)
	return nil
}

func (s *teamService) AddMember(ctx context.Context, id string, in AddMemberInput) (*model.Team, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	cur, err := inOrg(ctx, s.teams, id, a.OrgID, teamOrg)
	if err != nil {
		return nil, err
	}
	if cur.HasMember(in.UserID) {
		return nil, ErrConflict
	}
	if err := usersInOrg(ctx, s.users, a.OrgID, []string{in.UserID}); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = "member"
	}
	ts := now()
	members := append(cur.Members, model.TeamMember{UserID: in.UserID, Role: in.Role, JoinedAt: ts})
	set := repository.Fields{"members": members, "updated_at": ts}
	if in.Role == "lead" {
		set["lead_id"] = in.UserID
		for i := range members[:len(members)-1] {
			members[i].Role = "member"
		}
	}
	t, err := s.teams.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "team", id, map[string]any{"added": in.UserID})
	return t, nil
}

func (s *teamService) RemoveMember(ctx context.Context, id, userID string) (*model.Team, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := inOrg(ctx, s.teams, id, a.OrgID, teamOrg)
	if err != nil {
		return nil, err
	}
	if !cur.HasMember(userID) {
		return nil, ErrNotFound
	}
	members := make([]model.TeamMember, 0, len(cur.Members)-1)
	for _, m := range cur.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	set := repository.Fields{"members": members, "updated_at": now()}
	if cur.LeadID == userID {
		set["lead_id"] = ""
	}
	t, err := s.teams.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "team", id, map[string]any{"removed": userID})
	return t, nil
}
