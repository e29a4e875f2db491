package services

import (
	"fmt"
	"log"
	"sync"

	"job-tracker-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogEntry is a decoded catalog row: definition metadata plus typed
// requirements, immutable after load.
type CatalogEntry struct {
	ID           string
	Name         string
	Description  string
	Icon         string
	Category     models.AchievementCategory
	Tier         models.AchievementTier
	Rarity       models.AchievementRarity
	XPReward     int64
	Requirements []models.Requirement
}

// CatalogService owns the achievement catalog: seeds the table at boot, loads
// it once, and serves immutable entries. If loading fails the catalog stays
// disabled and unlock evaluation is skipped for the session — application
// tracking itself is unaffected.
type CatalogService struct {
	DB *gorm.DB

	mu      sync.RWMutex
	entries []CatalogEntry
	byID    map[string]CatalogEntry
	loaded  bool
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db, byID: make(map[string]CatalogEntry)}
}

// Seed upserts the shipped definitions into the catalog table. Existing rows
// are refreshed (the catalog is versioned with the binary); unlock rows are
// untouched.
func (s *CatalogService) Seed() error {
	for _, seed := range models.AchievementSeeds {
		raw, err := models.MarshalRequirements(seed.Requirements)
		if err != nil {
			return fmt.Errorf("seed %q: %w", seed.Name, err)
		}
		row := models.AchievementDefinition{
			ID:           seed.SeedID(),
			Name:         seed.Name,
			Description:  seed.Description,
			Icon:         seed.Icon,
			Category:     seed.Category,
			Tier:         seed.Tier,
			Rarity:       seed.Rarity,
			XPReward:     seed.XPReward,
			Requirements: raw,
		}
		if err := s.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "icon", "category", "tier", "rarity",
				"xp_reward", "requirements", "updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed %q: %w", seed.Name, err)
		}
	}
	return nil
}

// Load reads and decodes every catalog row. Called once at boot; on failure
// the catalog remains disabled.
func (s *CatalogService) Load() error {
	var rows []models.AchievementDefinition
	if err := s.DB.Order("id ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(rows))
	byID := make(map[string]CatalogEntry, len(rows))
	for _, row := range rows {
		reqs, err := models.UnmarshalRequirements(row.Requirements)
		if err != nil {
			return fmt.Errorf("catalog row %s: %w", row.ID, err)
		}
		entry := CatalogEntry{
			ID:           row.ID,
			Name:         row.Name,
			Description:  row.Description,
			Icon:         row.Icon,
			Category:     row.Category,
			Tier:         row.Tier,
			Rarity:       row.Rarity,
			XPReward:     row.XPReward,
			Requirements: reqs,
		}
		entries = append(entries, entry)
		byID[entry.ID] = entry
	}

	s.mu.Lock()
	s.entries = entries
	s.byID = byID
	s.loaded = true
	s.mu.Unlock()

	log.Printf("✅ Achievement catalog loaded: %d definitions", len(entries))
	return nil
}

// Enabled reports whether evaluation may run this session.
func (s *CatalogService) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Entries returns the loaded catalog, ordered by ID.
func (s *CatalogService) Entries() []CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CatalogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *CatalogService) Get(id string) (CatalogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	return e, ok
}
