package trophy

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

// catalogTTL bounds how long a replica serves a definition changed by another replica.
const catalogTTL = time.Minute

type catalogEntry struct {
	trophy   entity.Trophy
	loadedAt time.Time
}

// Catalog caches trophy definitions for catalogTTL. Upsert refreshes the local entry only.
type Catalog struct {
	trophyRepo repository.TrophyRepository
	trophies   *xsync.MapOf[string, catalogEntry]
}

func NewCatalog(trophyRepo repository.TrophyRepository) *Catalog {
	return &Catalog{
		trophyRepo: trophyRepo,
		trophies:   xsync.NewMapOf[catalogEntry](),
	}
}

func (c *Catalog) Get(ctx context.Context, code string) (*entity.Trophy, error) {
	now := xcontext.Now(ctx)
	if entry, ok := c.trophies.Load(code); ok && now.Sub(entry.loadedAt) < catalogTTL {
		trophy := entry.trophy
		return &trophy, nil
	}

	trophy, err := c.trophyRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.trophies.Store(code, catalogEntry{trophy: *trophy, loadedAt: now})
	return trophy, nil
}

func (c *Catalog) Upsert(ctx context.Context, trophy *entity.Trophy) error {
	if err := c.trophyRepo.Upsert(ctx, trophy); err != nil {
		return err
	}

	c.trophies.Delete(trophy.Code)
	return nil
}

func (c *Catalog) GetAll(ctx context.Context) ([]entity.Trophy, error) {
	trophies, err := c.trophyRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := xcontext.Now(ctx)
	for _, t := range trophies {
		c.trophies.Store(t.Code, catalogEntry{trophy: t, loadedAt: now})
	}

	return trophies, nil
}
