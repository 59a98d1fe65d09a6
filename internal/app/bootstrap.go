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

package app

import (
	"context"
	"fmt"
	"time"

	"engage-platform/internal/agent"
	"engage-platform/internal/conversation"
	"engage-platform/internal/storage/cache"
	"engage-platform/internal/storage/execstore"
	"engage-platform/internal/storage/toolstore"
	"engage-platform/internal/ticket"
	"engage-platform/pkg/config"
	"engage-platform/pkg/log"
	"engage-platform/pkg/secrets"
)

// Bootstrap holds the shared infrastructure: config, logger, stores and
// collaborators. Built once in cmd and reused by the API app.
type Bootstrap struct {
	Config        *config.Config
	Logger        *log.Logger
	ToolStore     toolstore.Store
	ExecStore     execstore.Store
	AgentStore    agent.Store
	Secrets       secrets.Store
	Tickets       ticket.Service
	Conversations conversation.Service
}

// NewBootstrap initializes stores and collaborators from configuration.
func NewBootstrap(cfg *config.Config) (*Bootstrap, error) {
	logCfg := &log.Config{}
	if cfg != nil {
		logCfg.Level = cfg.Log.Level
		logCfg.Format = cfg.Log.Format
		logCfg.File = cfg.Log.File
	}
	logger, err := log.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	ctx := context.Background()

	var toolStore toolstore.Store
	switch t := cfg.Storage.Tools.Type; t {
	case "", "memory":
		toolStore = toolstore.NewMemoryStore()
	case "postgres":
		toolStore, err = toolstore.NewPgStore(ctx, cfg.Storage.Tools.DSN)
		if err != nil {
			return nil, fmt.Errorf("init tool store: %w", err)
		}
		logger.Info("tool store using PostgreSQL backend")
	default:
		return nil, fmt.Errorf("unknown tool store type %q", t)
	}

	// Slug-lookup cache in front of the tool store, when configured.
	if cfg.Storage.Cache.TTL != "" {
		ttl, err := time.ParseDuration(cfg.Storage.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache ttl %q: %w", cfg.Storage.Cache.TTL, err)
		}
		cacheStore, err := cache.NewCache(cfg.Storage.Cache)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
		toolStore = toolstore.NewCachedStore(toolStore, cacheStore, ttl)
		logger.Info("tool resolution cache enabled",
			"type", cfg.Storage.Cache.Type, "ttl", ttl.String())
	}

	var execStore execstore.Store
	switch t := cfg.Storage.Executions.Type; t {
	case "", "memory":
		execStore = execstore.NewMemoryStore()
	case "postgres":
		execStore, err = execstore.NewPgStore(ctx, cfg.Storage.Executions.DSN)
		if err != nil {
			return nil, fmt.Errorf("init execution store: %w", err)
		}
		logger.Info("execution store using PostgreSQL backend")
	default:
		return nil, fmt.Errorf("unknown execution store type %q", t)
	}

	secretStore, err := secrets.NewStore(secrets.Config{
		Provider: cfg.Secrets.Provider,
		Config:   cfg.Secrets.Config,
	})
	if err != nil {
		return nil, fmt.Errorf("init secret store: %w", err)
	}

	return &Bootstrap{
		Config:        cfg,
		Logger:        logger,
		ToolStore:     toolStore,
		ExecStore:     execStore,
		AgentStore:    agent.NewMemoryStore(),
		Secrets:       secretStore,
		Tickets:       ticket.NewMemoryService(),
		Conversations: conversation.NewMemoryService(),
	}, nil
}

// Close releases store connections.
func (b *Bootstrap) Close() error {
	var first error
	if b.ToolStore != nil {
		if err := b.ToolStore.Close(); err != nil && first == nil {
			first = err
		}
	}
	if b.ExecStore != nil {
		if err := b.ExecStore.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
