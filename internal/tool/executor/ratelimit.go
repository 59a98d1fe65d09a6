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

package executor

import (
	"sync"

	"golang.org/x/time/rate"

	"engage-platform/pkg/config"
)

// rateLimiter throttles executions per tool slug. Tools without a
// configured limit are never throttled.
type rateLimiter struct {
	mu       sync.Mutex
	limits   map[string]config.ToolRateLimitConfig
	limiters map[string]*rate.Limiter
}

func newRateLimiter(limits map[string]config.ToolRateLimitConfig) *rateLimiter {
	return &rateLimiter{
		limits:   limits,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether one execution of the tool may proceed now.
func (r *rateLimiter) Allow(slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, ok := r.limiters[slug]
	if !ok {
		limit, configured := r.limits[slug]
		if !configured || limit.QPS <= 0 {
			return true
		}
		burst := limit.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(limit.QPS), burst)
		r.limiters[slug] = limiter
	}
	return limiter.Allow()
}
