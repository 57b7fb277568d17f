package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/matchload/internal/adapters/external"
	"github.com/okian/matchload/internal/domain/injury"
	"github.com/okian/matchload/pkg/logger"
)

// Squad lists players and their biographies.
type Squad interface {
	Players(ctx context.Context) ([]external.Player, error)
	Player(ctx context.Context, name string) (external.Player, error)
	Biography(ctx context.Context, p external.Player) (external.Biography, error)
}

// Entities resolves player pages to structured metadata.
type Entities interface {
	EntityID(ctx context.Context, title string) (string, error)
	Metadata(ctx context.Context, id string) (external.Metadata, error)
}

// InjurySource returns injury histories by Transfermarkt id.
type InjurySource interface {
	Injuries(ctx context.Context, playerID string) (external.InjuryHistory, error)
}

// NewsSource searches recent news.
type NewsSource interface {
	Everything(ctx context.Context, query string) ([]external.Article, error)
}

// Profile is a player's biography and metadata. Metadata is nil when the
// entity lookup fails.
type Profile struct {
	Player    external.Player    `json:"player"`
	Biography external.Biography `json:"biography"`
	Metadata  *external.Metadata `json:"metadata,omitempty"`
}

// InjuryReport is a player's injury history grouped by injury type.
type InjuryReport struct {
	Player  external.Player `json:"player"`
	Source  string          `json:"source"`
	Records []injury.Record `json:"records"`
	Groups  []injury.Group  `json:"groups"`
}

// Players lists the squad.
func (s *Service) Players(ctx context.Context) ([]external.Player, error) {
	if s.squad == nil {
		return nil, fmt.Errorf("squad: %w", ErrUnavailable)
	}
	return s.squad.Players(ctx)
}

func (s *Service) player(ctx context.Context, name string) (external.Player, error) {
	if s.squad == nil {
		return external.Player{}, fmt.Errorf("squad: %w", ErrUnavailable)
	}
	if name == "" {
		name = s.defaultPlayer
	}
	return s.squad.Player(ctx, name)
}

// PlayerProfile fetches the biography and the entity metadata of name
// concurrently.
func (s *Service) PlayerProfile(ctx context.Context, name string) (Profile, error) {
	p, err := s.player(ctx, name)
	if err != nil {
		return Profile{}, err
	}
	out := Profile{Player: p}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bio, err := s.squad.Biography(gctx, p)
		if err != nil {
			return err
		}
		out.Biography = bio
		return nil
	})
	if s.entities != nil {
		g.Go(func() error {
			meta, err := s.metadata(gctx, p)
			if err != nil {
				s.logger.Warn(ctx, "player metadata unavailable", logger.String("player", p.Name), logger.Error(err))
				return nil
			}
			out.Metadata = &meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}
	return out, nil
}

func (s *Service) metadata(ctx context.Context, p external.Player) (external.Metadata, error) {
	id, err := s.entities.EntityID(ctx, p.Title)
	if err != nil {
		return external.Metadata{}, err
	}
	return s.entities.Metadata(ctx, id)
}

// PlayerInjuries returns the injury history of name.
func (s *Service) PlayerInjuries(ctx context.Context, name string) (InjuryReport, error) {
	if s.entities == nil || s.injuries == nil {
		return InjuryReport{}, fmt.Errorf("injuries: %w", ErrUnavailable)
	}
	p, err := s.player(ctx, name)
	if err != nil {
		return InjuryReport{}, err
	}
	meta, err := s.metadata(ctx, p)
	if err != nil {
		return InjuryReport{}, err
	}
	if meta.TransfermarktID == "" {
		return InjuryReport{}, fmt.Errorf("player %q has no transfermarkt id: %w", p.Name, external.ErrNotFound)
	}
	history, err := s.injuries.Injuries(ctx, meta.TransfermarktID)
	if err != nil {
		return InjuryReport{}, err
	}
	return InjuryReport{
		Player:  p,
		Source:  history.Source,
		Records: history.Records,
		Groups:  injury.GroupByType(history.Records),
	}, nil
}

// PlayerNews returns last week's articles about name.
func (s *Service) PlayerNews(ctx context.Context, name string) ([]external.Article, error) {
	if s.news == nil {
		return nil, fmt.Errorf("news: %w", ErrUnavailable)
	}
	p, err := s.player(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.news.Everything(ctx, p.Name)
}
