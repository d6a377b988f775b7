package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/ledger/internal/domain/trophy"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type TrophyDomain interface {
	AwardTrophy(context.Context, *model.AwardTrophyRequest) (*model.AwardTrophyResponse, error)
	UpsertTrophy(context.Context, *model.UpsertTrophyRequest) (*model.UpsertTrophyResponse, error)
	GetTrophies(context.Context, *model.GetTrophiesRequest) (*model.GetTrophiesResponse, error)
}

type trophyDomain struct {
	ledger  *trophy.Ledger
	catalog *trophy.Catalog
}

func NewTrophyDomain(ledger *trophy.Ledger, catalog *trophy.Catalog) *trophyDomain {
	return &trophyDomain{ledger: ledger, catalog: catalog}
}

func (d *trophyDomain) AwardTrophy(
	ctx context.Context, req *model.AwardTrophyRequest,
) (*model.AwardTrophyResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.Code == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty code")
	}

	granted, err := d.ledger.AwardOnce(ctx, userID, req.Code)
	if err != nil {
		return nil, err
	}

	return &model.AwardTrophyResponse{Granted: granted}, nil
}

func (d *trophyDomain) UpsertTrophy(
	ctx context.Context, req *model.UpsertTrophyRequest,
) (*model.UpsertTrophyResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(xcontext.Configs(ctx).Auth.AdminIDs, userID) {
		return nil, errorx.New(errorx.PermissionDenied, "Only admin can update trophies")
	}

	if req.Code == "" || req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Code and name are required")
	}

	if req.Points < 0 {
		return nil, errorx.New(errorx.BadRequest, "Points must not be negative")
	}

	err = d.catalog.Upsert(ctx, &entity.Trophy{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert trophy: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpsertTrophyResponse{}, nil
}

func (d *trophyDomain) GetTrophies(
	ctx context.Context, req *model.GetTrophiesRequest,
) (*model.GetTrophiesResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	trophies, err := d.catalog.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get trophies: %v", err)
		return nil, errorx.Unknown
	}

	clientTrophies := []model.Trophy{}
	for i := range trophies {
		clientTrophies = append(clientTrophies, model.ConvertTrophy(&trophies[i]))
	}

	awards, err := d.ledger.Awards(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get trophy awards: %v", err)
		return nil, errorx.Unknown
	}

	clientAwards := []model.TrophyAward{}
	for i := range awards {
		t, err := d.catalog.Get(ctx, awards[i].TrophyCode)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get trophy %s: %v", awards[i].TrophyCode, err)
			return nil, errorx.Unknown
		}

		clientTrophy := model.Trophy{Code: awards[i].TrophyCode}
		if t != nil {
			clientTrophy = model.ConvertTrophy(t)
		}

		clientAwards = append(clientAwards, model.ConvertTrophyAward(&awards[i], clientTrophy))
	}

	return &model.GetTrophiesResponse{Trophies: clientTrophies, Awards: clientAwards}, nil
}
