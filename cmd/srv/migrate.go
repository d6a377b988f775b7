package main

import (
	"github.com/questx-lab/ledger/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	return migration.Run(s.ctx, cctx.String("version"))
}
