package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/viper"

	"github.com/marcosbot/marcos/internal/bot"
	"github.com/marcosbot/marcos/internal/config"
	"github.com/marcosbot/marcos/internal/logging"
	"github.com/marcosbot/marcos/internal/markov"
	"github.com/marcosbot/marcos/internal/phraser"
	"github.com/marcosbot/marcos/internal/roster"
	"github.com/marcosbot/marcos/internal/store"
)

// #region app

// app is everything a local command needs, opened over one database.
type app struct {
	cfg      config.Config
	store    *store.Store
	roster   *roster.Roster
	recorder *logging.Recorder
	phraser  *phraser.Phraser
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.LoadFrom(viper.GetViper())
	if cfg.Verbose {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
		log.Printf("[MARCOS] db=%s chat=%d", cfg.DBPath, cfg.ChatID)
	}

	s, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	r, err := roster.New(s.DB())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open roster: %w", err)
	}
	rec, err := logging.NewRecorder(s.DB())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open generation log: %w", err)
	}

	p := phraser.New(s, nil,
		phraser.WithProperties(markov.Properties{
			MutationProbability: cfg.MutationProbability,
			MaxSteps:            cfg.MaxWalkSteps,
		}),
		phraser.WithHaikuAttempts(cfg.HaikuAttempts),
	)
	return &app{cfg: cfg, store: s, roster: r, recorder: rec, phraser: p}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// newBot wires a bot with the default commands onto m. When a locales file
// is configured its texts are used and reloaded whenever it changes.
func (a *app) newBot(ctx context.Context, m bot.Messenger) (*bot.Bot, error) {
	locales := config.DefaultLocales()
	if a.cfg.LocalesPath != "" {
		l, err := config.LoadLocales(a.cfg.LocalesPath)
		if err != nil {
			return nil, err
		}
		locales = l
	}

	b := bot.New(bot.Config{
		Locales:          locales,
		SubstitutePeople: a.cfg.SubstitutePeople,
		ListenToAyyLmao:  a.cfg.ListenToAyyLmao,
	}, m, a.phraser, a.roster, a.recorder)
	if err := b.RegisterDefaults(); err != nil {
		return nil, err
	}

	if a.cfg.LocalesPath != "" {
		err := config.WatchLocales(ctx, a.cfg.LocalesPath, func(l config.Locales) {
			log.Printf("[MARCOS] locales reloaded from %s", a.cfg.LocalesPath)
			b.SetLocales(l)
		})
		if err != nil {
			return nil, fmt.Errorf("watch locales: %w", err)
		}
	}
	return b, nil
}

// #endregion app
