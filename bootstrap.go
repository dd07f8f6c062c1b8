/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package membersearch

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/membersearch/config"
	"github.com/tomoncle/membersearch/database"
	"github.com/tomoncle/membersearch/model"
	"github.com/tomoncle/membersearch/repository"
)

// Init registers the member and team models and initializes the global
// database from provider.
func Init(provider database.AbstractDatabaseConfigProvider) (*bun.DB, error) {
	if provider == nil {
		return nil, fmt.Errorf("database config provider cannot be nil")
	}
	model.Register()
	return database.InitDB(provider.ConfigLoader())
}

// Setup applies the log settings of cfg, initializes the global database
// and returns a MemberService bound to it.
func Setup(cfg *config.Config) (MemberService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	cfg.ApplyLogging()
	db, err := Init(cfg)
	if err != nil {
		return nil, err
	}
	log.WithField("count_shortcut", cfg.Search.CountShortcut).Info("member search ready")
	return NewMemberServiceWithDB(db, SearchOptions(cfg.Search)...), nil
}

// SearchOptions maps the search section onto repository options.
func SearchOptions(c config.SearchConfig) []repository.MemberRepositoryOption {
	return []repository.MemberRepositoryOption{
		repository.WithCountShortcut(c.CountShortcut),
	}
}

// Close releases the global database.
func Close() error {
	return database.CloseDB()
}
