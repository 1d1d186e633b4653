package main

import (
	"errors"
	"log"

	"github.com/m3rciful/insurancebot/core/cmd"
	"github.com/m3rciful/insurancebot/internal/app"
	appconfig "github.com/m3rciful/insurancebot/internal/config"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := appconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(cfg cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			appCfg, ok := cfg.(*appconfig.Config)
			if !ok {
				return nil, errors.New("unexpected config type")
			}
			a, err := app.Bootstrap(appCfg)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
