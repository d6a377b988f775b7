package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/ledger/internal/middleware"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/pkg/prometheus"
	"github.com/questx-lab/ledger/pkg/router"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func (s *srv) startApi(*cli.Context) error {
	if err := s.loadWorker(); err != nil {
		return err
	}

	if err := s.loadSnowflake(); err != nil {
		return err
	}

	s.loadAuthenticator()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serve(ctx, &http.Server{Addr: cfg.ApiServer.Address(), Handler: s.router.Handler()})
	})
	g.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", prometheus.NewHandler())
		return serve(ctx, &http.Server{Addr: cfg.PrometheusServer.Address(), Handler: mux})
	})

	return g.Wait()
}

// serve runs the server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		xcontext.Logger(ctx).Infof("Starting server on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	xcontext.Logger(ctx).Infof("Server on %s stopped", server.Addr)
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	authVerifier := middleware.NewAuthVerifier().WithAccessToken(s.accessTokenEngine)

	// These following APIs need authentication with Access Token.
	authRouter := s.router.Branch()
	authRouter.Before(authVerifier.Middleware())
	{
		// User API
		router.POST(authRouter, "/provision", s.provision)
		router.GET(authRouter, "/getAccount", s.rewardDomain.GetAccount)

		// Reward API
		router.POST(authRouter, "/claimDaily", s.rewardDomain.ClaimDaily)
		router.POST(authRouter, "/useItem", s.rewardDomain.UseItem)
		router.GET(authRouter, "/getDailyAggregate", s.rewardDomain.GetDailyAggregate)
		router.GET(authRouter, "/getReferralActivity", s.rewardDomain.GetReferralActivity)

		// Trophy API
		router.POST(authRouter, "/awardTrophy", s.trophyDomain.AwardTrophy)
		router.POST(authRouter, "/upsertTrophy", s.trophyDomain.UpsertTrophy)
		router.GET(authRouter, "/getTrophies", s.trophyDomain.GetTrophies)

		// Statistic API
		router.GET(authRouter, "/getLeaderBoard", s.statisticDomain.GetLeaderBoard)
		router.GET(authRouter, "/getLeaderBoardSnapshot", s.statisticDomain.GetLeaderBoardSnapshot)
	}

	grantRouter := authRouter.Branch()
	grantRouter.Before(middleware.NewGrantRateLimiter(s.rateLimiter).Middleware())
	{
		router.POST(grantRouter, "/grant", s.rewardDomain.Grant)
	}
}

// provision refreshes the access token cookie after the account is provisioned.
func (s *srv) provision(ctx context.Context, req *model.ProvisionRequest) (*model.ProvisionResponse, error) {
	resp, err := s.userDomain.Provision(ctx, req)
	if err != nil {
		return nil, err
	}

	token, err := s.accessTokenEngine.Generate(resp.ID, model.AccessToken{ID: resp.ID})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot generate access token: %v", err)
		return resp, nil
	}

	middleware.SetAccessTokenCookie(ctx, token)
	return resp, nil
}

func (s *srv) issueToken(cctx *cli.Context) error {
	userID := cctx.Args().First()
	if userID == "" {
		return errors.New("missing user id")
	}

	s.loadAuthenticator()
	token, err := s.accessTokenEngine.Generate(userID, model.AccessToken{ID: userID})
	if err != nil {
		return err
	}

	_, err = os.Stdout.WriteString(token + "\n")
	return err
}
