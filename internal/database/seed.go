// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sieve/internal/logging"
	"github.com/tomtom215/sieve/internal/models"
)

// EmbedFunc produces the embedding of a text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

type seedItem struct {
	externalID  string
	title       string
	description string
}

type seedChannel struct {
	externalID  string
	name        string
	description string
	items       []seedItem
}

var demoCatalog = []seedChannel{
	{
		externalID:  "UC-natural-history",
		name:        "Natural History",
		description: "Fossils, field trips and museum tours",
		items: []seedItem{
			{"nh-001", "Dinosaur fossils of Montana", "A paleontologist digs up a Triceratops skull"},
			{"nh-002", "How birds evolved from dinosaurs", "Feathers, hollow bones and the Jurassic record"},
			{"nh-003", "Coral reefs at night", "Bioluminescent plankton and sleeping parrotfish"},
		},
	},
	{
		externalID:  "UC-home-kitchen",
		name:        "Home Kitchen",
		description: "Weeknight cooking",
		items: []seedItem{
			{"hk-001", "Sourdough starter from scratch", "Flour, water and a week of patience"},
			{"hk-002", "Five minute tomato soup", "Pantry staples turned into lunch"},
		},
	},
	{
		externalID:  "UC-space-weekly",
		name:        "Space Weekly",
		description: "Launches and astronomy news",
		items: []seedItem{
			{"sw-001", "Watching a rocket launch up close", "Countdown, ignition and booster landing"},
			{"sw-002", "The rings of Saturn explained", "Ice, rock and shepherd moons"},
		},
	},
}

// SeedDemoData loads a small catalog into an empty database. embed may be
// nil; items whose embedding fails are stored without a vector so the feed
// still works. It returns the number of content items inserted.
func (db *DB) SeedDemoData(ctx context.Context, embed EmbedFunc) (int, error) {
	existing, err := db.CountContentItems(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		logging.Debug().Int("items", existing).Msg("Catalog not empty, skipping demo seed")
		return 0, nil
	}

	base := time.Now().UTC().Add(-time.Duration(len(demoCatalog)*24) * time.Hour)
	inserted := 0
	for ci, sc := range demoCatalog {
		channelID, err := db.UpsertChannel(ctx, models.Channel{
			ExternalID:  sc.externalID,
			Name:        sc.name,
			Description: sc.description,
		})
		if err != nil {
			return inserted, fmt.Errorf("failed to seed channel %s: %w", sc.name, err)
		}

		for ii, si := range sc.items {
			var vec []float32
			if embed != nil {
				vec, err = embed(ctx, si.title+". "+si.description)
				if err != nil {
					logging.Warn().Err(err).Str("external_id", si.externalID).
						Msg("Embedding failed during seed, storing item without vector")
					vec = nil
				}
			}
			_, err = db.InsertContentItem(ctx, models.ContentItem{
				ChannelID:    channelID,
				ExternalID:   si.externalID,
				Title:        si.title,
				Description:  si.description,
				ThumbnailURL: "https://img.example.com/" + si.externalID + ".jpg",
				CreatedAt:    base.Add(time.Duration(ci*24+ii) * time.Hour),
			}, vec)
			if err != nil {
				return inserted, fmt.Errorf("failed to seed item %s: %w", si.externalID, err)
			}
			inserted++
		}
	}

	logging.Info().Int("items", inserted).Msg("Demo catalog seeded")
	return inserted, nil
}
