// Package heroes builds the hero feature catalog from OpenDota hero stats
// and keeps it cached in memory and SQLite.
package heroes

import (
	"strconv"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/dota/opendota"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
)

// ItemFromStats maps one OpenDota hero onto a catalog item. The first listed
// role is the hero's role.
func ItemFromStats(h opendota.HeroStats) recommend.Item {
	role := recommend.RoleUnknown
	if len(h.Roles) > 0 && h.Roles[0] != "" {
		role = h.Roles[0]
	}

	name := h.LocalizedName
	if name == "" {
		name = h.Name
	}

	return recommend.Item{
		ID:               strconv.Itoa(h.ID),
		Name:             name,
		AttackType:       h.AttackType,
		PrimaryAttribute: recommend.NormalizeAttribute(h.PrimaryAttr),
		Role:             role,
	}
}

// CatalogFromStats builds a catalog from the heroStats listing, skipping
// entries without an id.
func CatalogFromStats(stats []opendota.HeroStats) *recommend.Catalog {
	items := make([]recommend.Item, 0, len(stats))
	for _, h := range stats {
		if h.ID <= 0 {
			continue
		}
		items = append(items, ItemFromStats(h))
	}
	return recommend.NewCatalog(items)
}

func toModels(catalog *recommend.Catalog) []*models.Hero {
	items := catalog.List()
	heroes := make([]*models.Hero, 0, len(items))
	for _, item := range items {
		heroes = append(heroes, &models.Hero{
			ID:          item.ID,
			Name:        item.Name,
			AttackType:  item.AttackType,
			PrimaryAttr: item.PrimaryAttribute,
			Role:        item.Role,
		})
	}
	return heroes
}

func fromModels(heroes []*models.Hero) *recommend.Catalog {
	items := make([]recommend.Item, 0, len(heroes))
	for _, h := range heroes {
		items = append(items, recommend.Item{
			ID:               h.ID,
			Name:             h.Name,
			AttackType:       h.AttackType,
			PrimaryAttribute: h.PrimaryAttr,
			Role:             h.Role,
		})
	}
	return recommend.NewCatalog(items)
}
