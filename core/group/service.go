package group

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/member"
)

type (
	Repository interface {
		CreateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		QueryGroups(ctx context.Context, exec ...core.DBExecutor) ([]Group, error)
		GetGroup(ctx context.Context, id string, exec ...core.DBExecutor) (Group, error)
		UpdateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		DeleteGroup(ctx context.Context, id string, exec ...core.DBExecutor) error

		// QueryMemberships returns the memberships of the given groups, with their Member.
		QueryMemberships(ctx context.Context, groupIDs []string, exec ...core.DBExecutor) ([]Membership, error)
		GetMembership(ctx context.Context, groupID, memberID string, exec ...core.DBExecutor) (Membership, error)
		CreateMembership(ctx context.Context, ms Membership, exec ...core.DBExecutor) (Membership, error)
		DeleteMembership(ctx context.Context, groupID, memberID string, exec ...core.DBExecutor) error
		DeleteGroupMemberships(ctx context.Context, groupID string, exec ...core.DBExecutor) error
	}

	MemberFinder interface {
		GetMember(ctx context.Context, id string, exec ...core.DBExecutor) (member.Member, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		members MemberFinder
	}
)

func NewService(db core.DB, repo Repository, members MemberFinder) *Service {
	return &Service{db: db, repo: repo, members: members}
}

func errAlreadyMember(groupID, memberID string) error {
	return core.NewConflictError("member %s is already in group %s", memberID, groupID)
}

func errNotMember(groupID, memberID string) error {
	return &core.NotFoundError{
		Entity:  "membership",
		ID:      memberID,
		Message: fmt.Sprintf("member %s not found in group %s", memberID, groupID),
	}
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := core.Now()
	grp := Group{
		ID:          uuid.NewString(),
		Name:        ng.Name,
		Description: ng.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Members:     []Membership{},
	}
	grp, err := svc.repo.CreateGroup(ctx, grp)
	return grp, errors.Wrap(err, "creating group")
}

// QueryAll returns every group with its memberships.
func (svc *Service) QueryAll(ctx context.Context) ([]Group, error) {
	groups, err := svc.repo.QueryGroups(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	if err = svc.loadMembers(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Group, error) {
	grp, err := svc.repo.GetGroup(ctx, id)
	if err != nil {
		return Group{}, err
	}
	groups := []Group{grp}
	if err = svc.loadMembers(ctx, groups); err != nil {
		return Group{}, err
	}
	return groups[0], nil
}

func (svc *Service) loadMembers(ctx context.Context, groups []Group) error {
	if len(groups) == 0 {
		return nil
	}
	ids := make([]string, len(groups))
	for i, grp := range groups {
		ids[i] = grp.ID
	}

	memberships, err := svc.repo.QueryMemberships(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "querying memberships")
	}
	byGroup := make(map[string][]Membership, len(groups))
	for _, ms := range memberships {
		byGroup[ms.GroupID] = append(byGroup[ms.GroupID], ms)
	}
	for i := range groups {
		if groups[i].Members = byGroup[groups[i].ID]; groups[i].Members == nil {
			groups[i].Members = []Membership{}
		}
	}
	return nil
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGroup) (Group, error) {
	err := core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		grp, err := svc.repo.GetGroup(ctx, id, tx)
		if err != nil {
			return err
		}
		if ug.Name != nil {
			grp.Name = *ug.Name
		}
		if ug.Description != nil {
			grp.Description = core.CleanOptional(ug.Description)
		}
		grp.UpdatedAt = core.Now()

		_, err = svc.repo.UpdateGroup(ctx, grp, tx)
		return errors.Wrap(err, "updating group")
	})
	if err != nil {
		return Group{}, err
	}
	return svc.GetByID(ctx, id)
}

// Delete removes the group and its memberships in one transaction.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetGroup(ctx, id, tx); err != nil {
			return err
		}
		if err := svc.repo.DeleteGroupMemberships(ctx, id, tx); err != nil {
			return errors.Wrap(err, "deleting group memberships")
		}
		return errors.Wrap(svc.repo.DeleteGroup(ctx, id, tx), "deleting group")
	})
}

// AddMember links the member to the group. Both must exist and the member must not already be in the group.
func (svc *Service) AddMember(ctx context.Context, groupID, memberID string) (Membership, error) {
	var ms Membership
	err := core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetGroup(ctx, groupID, tx); err != nil {
			return err
		}
		if _, err := svc.members.GetMember(ctx, memberID, tx); err != nil {
			return err
		}

		_, err := svc.repo.GetMembership(ctx, groupID, memberID, tx)
		switch {
		case err == nil:
			return errAlreadyMember(groupID, memberID)
		case !core.IsNotFound(err):
			return errors.Wrap(err, "finding membership")
		}

		ms, err = svc.repo.CreateMembership(ctx, Membership{
			MemberID:   memberID,
			GroupID:    groupID,
			AssignedAt: core.Now(),
		}, tx)
		if errors.Is(err, core.ErrUniqueViolation) {
			return errAlreadyMember(groupID, memberID)
		}
		return errors.Wrap(err, "creating membership")
	})
	if err != nil {
		return Membership{}, err
	}
	return ms, nil
}

func (svc *Service) RemoveMember(ctx context.Context, groupID, memberID string) error {
	return core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetMembership(ctx, groupID, memberID, tx); err != nil {
			if core.IsNotFound(err) {
				return errNotMember(groupID, memberID)
			}
			return errors.Wrap(err, "finding membership")
		}
		return errors.Wrap(svc.repo.DeleteMembership(ctx, groupID, memberID, tx), "deleting membership")
	})
}
