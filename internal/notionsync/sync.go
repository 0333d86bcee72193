// Package notionsync mirrors the portfolio into a Notion database, one page
// per property.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/logger"
)

// Stats counts what a sync did, or would do in dry-run mode.
type Stats struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

// SyncProperties makes the Notion database match props:
// 1. Queries all existing Notion pages
// 2. Archives stale pages (no Property ID, a duplicate, or not in props)
// 3. Updates pages of known properties and creates the missing ones
//
// Failures on single pages are logged and counted; only a failed query
// aborts the sync.
func SyncProperties(ctx context.Context, props []domain.Property, notionClient NotionService, notionDBID string, dryRun bool) (Stats, error) {
	log := logger.FromContext(ctx)
	var stats Stats

	log.Info().
		Bool("dry_run", dryRun).
		Int("property_count", len(props)).
		Msg("Starting property sync to Notion")

	valid := make(map[string]bool, len(props))
	for _, p := range props {
		valid[p.ID] = true
	}

	notionPages, err := ListPropertyPages(ctx, notionClient, notionDBID)
	if err != nil {
		return stats, fmt.Errorf("failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	pageByID := make(map[string]string)
	for _, page := range notionPages {
		propertyID := page.PropertyID
		_, dup := pageByID[propertyID]
		if propertyID != "" && valid[propertyID] && !dup {
			pageByID[propertyID] = page.PageID
			continue
		}

		if dryRun {
			log.Info().
				Str("property_id", propertyID).
				Str("page_id", page.PageID).
				Msg("[DRY RUN] Would archive stale Notion page")
			stats.Archived++
			continue
		}
		if err := notionClient.ArchivePage(ctx, page.PageID); err != nil {
			log.Warn().
				Err(err).
				Str("property_id", propertyID).
				Str("page_id", page.PageID).
				Msg("Failed to archive stale Notion page")
			stats.Failed++
			continue
		}
		log.Info().
			Str("property_id", propertyID).
			Str("page_id", page.PageID).
			Msg("Archived stale Notion page")
		stats.Archived++
	}

	for _, p := range props {
		pageID, exists := pageByID[p.ID]

		if dryRun {
			if exists {
				log.Info().Str("property_id", p.ID).Str("page_id", pageID).Msg("[DRY RUN] Would update Notion page")
				stats.Updated++
			} else {
				log.Info().Str("property_id", p.ID).Msg("[DRY RUN] Would create Notion page")
				stats.Created++
			}
			continue
		}

		properties := PropertyToNotionProperties(p)
		if exists {
			if _, err := notionClient.UpdatePage(ctx, pageID, properties); err != nil {
				log.Warn().
					Err(err).
					Str("property_id", p.ID).
					Str("page_id", pageID).
					Msg("Failed to update Notion page")
				stats.Failed++
				continue
			}
			log.Info().Str("property_id", p.ID).Str("page_id", pageID).Msg("Updated Notion page")
			stats.Updated++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, properties)
		if err != nil {
			log.Warn().
				Err(err).
				Str("property_id", p.ID).
				Msg("Failed to create Notion page")
			stats.Failed++
			continue
		}
		log.Info().Str("property_id", p.ID).Str("page_id", string(page.ID)).Msg("Created Notion page")
		stats.Created++
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("archived", stats.Archived).
		Int("failed", stats.Failed).
		Msg("Property sync completed")

	return stats, nil
}
