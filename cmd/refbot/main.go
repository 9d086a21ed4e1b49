package main

import (
	"log"

	"github.com/m3rciful/refbot/core/bootstrap"
	"github.com/m3rciful/refbot/core/buildinfo"
	"github.com/m3rciful/refbot/core/cmd"
	"github.com/m3rciful/refbot/internal/app"
)

func main() {
	log.Printf("refbot %s (%s)", buildinfo.Version, buildinfo.Commit)

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg, ok := carrier.(*app.Config)
			if !ok {
				cfg = &app.Config{Config: *carrier.CoreConfig()}
			}
			res, err := bootstrap.Run(bootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			return app.New(cfg, res.DB), nil
		},
	})
	if err != nil {
		log.Fatalf("refbot: %v", err)
	}
}
