// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package toolstore

import (
	"context"
	"time"

	"engage-platform/internal/storage/cache"
	"engage-platform/internal/tool"
)

// CachedStore wraps a Store with a read-through cache on slug lookups,
// the hot path of execution resolution. Writes invalidate; execution
// touches do not, so last_executed_at may lag by at most the TTL.
type CachedStore struct {
	Store
	cache cache.Store
	ttl   time.Duration
}

// NewCachedStore decorates inner with slug-lookup caching.
func NewCachedStore(inner Store, c cache.Store, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStore{Store: inner, cache: c, ttl: ttl}
}

func slugKey(companyID, slug string) string {
	return "tool:slug:" + companyID + ":" + slug
}

// GetBySlug returns the cached tool when present, falling back to the
// inner store. Cache failures are treated as misses.
func (s *CachedStore) GetBySlug(ctx context.Context, companyID, slug string) (*tool.Tool, error) {
	key := slugKey(companyID, slug)
	var cached tool.Tool
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}
	t, err := s.Store.GetBySlug(ctx, companyID, slug)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, t, s.ttl)
	return t, nil
}

// Update writes through and drops the cached entry. A rename must also
// drop the entry under the previous slug, or it keeps serving the stale
// tool until the TTL expires.
func (s *CachedStore) Update(ctx context.Context, t *tool.Tool) error {
	prev, err := s.Store.GetByID(ctx, t.CompanyID, t.ID)
	if err != nil {
		return err
	}
	if err := s.Store.Update(ctx, t); err != nil {
		return err
	}
	if prev.Slug != t.Slug {
		_ = s.cache.Delete(ctx, slugKey(t.CompanyID, prev.Slug))
	}
	_ = s.cache.Delete(ctx, slugKey(t.CompanyID, t.Slug))
	return nil
}

// Delete removes the tool and its cached entry.
func (s *CachedStore) Delete(ctx context.Context, companyID, id string) error {
	t, err := s.Store.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, companyID, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, slugKey(companyID, t.Slug))
	return nil
}
