package rules

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"plmsync.GO/core/cache"
	entity "plmsync.GO/model/entity"
	ruleRepo "plmsync.GO/model/repository/rule"
)

const (
	cacheTag = "sync_rules"
	cacheTTL = time.Minute
)

// Resolver resolves a rule value by key, falling back to def.
type Resolver interface {
	Resolve(key, def string) string
}

// Provider reads enabled rules from the database with a short-lived memo.
// Writes made through Update invalidate the memo immediately.
type Provider struct {
	repo  *ruleRepo.RuleRepository
	cache *cache.Cache[string, memo]
}

func NewProvider(db *gorm.DB) *Provider {
	return &Provider{repo: ruleRepo.NewRuleRepository(db), cache: cache.New[string, memo](cacheTTL)}
}

type memo struct {
	value string
	found bool
}

// Resolve never fails: a missing, disabled or unreadable rule yields def.
func (p *Provider) Resolve(key, def string) string {
	if m, ok := p.cache.Get(key); ok {
		if m.found {
			return m.value
		}
		return def
	}
	rule, err := p.repo.FindEnabled(key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[rules] lookup %s failed, using default: %v", key, err)
			return def
		}
		p.cache.Set(key, memo{}, cacheTag)
		return def
	}
	p.cache.Set(key, memo{value: rule.RuleValue, found: true}, cacheTag)
	return rule.RuleValue
}

// List returns every rule, enabled or not.
func (p *Provider) List() ([]entity.SyncRule, error) {
	return p.repo.All()
}

// Update changes a rule's value and/or enabled flag.
func (p *Provider) Update(key string, value *string, enabled *bool) (*entity.SyncRule, error) {
	rule, err := p.repo.Update(key, value, enabled)
	p.cache.DeleteByTag(cacheTag)
	return rule, err
}

// Seed inserts the default rules whose keys are absent. Existing rules are left alone.
func (p *Provider) Seed() (int, error) {
	created := 0
	for _, d := range Defaults {
		ok, err := p.repo.CreateIfMissing(entity.SyncRule{
			RuleKey:   d.Key,
			RuleName:  d.Label,
			RuleValue: d.Value,
			IsEnabled: true,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
			log.Printf("[rules] seeded %s = %q", d.Key, d.Value)
		}
	}
	p.cache.DeleteByTag(cacheTag)
	return created, nil
}

// SplitList parses a comma separated rule value.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Static is a fixed Resolver for callers that have no database.
type Static map[string]string

func (s Static) Resolve(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}
