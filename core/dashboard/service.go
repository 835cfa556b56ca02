package dashboard

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type (
	Repository interface {
		CountMembers(ctx context.Context) (int, error)
		CountGroups(ctx context.Context) (int, error)
		CountClasses(ctx context.Context) (int, error)
	}

	Summary struct {
		TotalMembers               int `json:"totalMembers"`
		TotalGroups                int `json:"totalGroups"`
		TotalBiblicalSchoolClasses int `json:"totalBiblicalSchoolClasses"`
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Summary counts members, groups and classes concurrently.
func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		sum.TotalMembers, err = svc.repo.CountMembers(gctx)
		return errors.Wrap(err, "counting members")
	})
	g.Go(func() (err error) {
		sum.TotalGroups, err = svc.repo.CountGroups(gctx)
		return errors.Wrap(err, "counting groups")
	})
	g.Go(func() (err error) {
		sum.TotalBiblicalSchoolClasses, err = svc.repo.CountClasses(gctx)
		return errors.Wrap(err, "counting classes")
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return sum, nil
}
