// Copyright 2025 The NLP Odyssey Authors
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

package cryptoagent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nlpodyssey/openai-agents-go/memory"
)

// OpenSession opens the conversation memory configured in cfg.
//
// It returns a nil session when no memory is configured. The returned close
// function is never nil.
func OpenSession(ctx context.Context, cfg Config) (memory.Session, func() error, error) {
	switch {
	case cfg.SessionSQLitePath != "":
		s, err := memory.NewSQLiteSession(ctx, memory.SQLiteSessionParams{
			SessionID:        cfg.SessionID,
			DBDataSourceName: cfg.SessionSQLitePath,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SQLite session: %w", err)
		}
		return s, s.Close, nil

	case cfg.SessionPostgresURL != "":
		s, err := memory.NewPgSession(ctx, memory.PgSessionParams{
			SessionID:        cfg.SessionID,
			ConnectionString: cfg.SessionPostgresURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open PostgreSQL session: %w", err)
		}
		return s, func() error { return s.Close(context.WithoutCancel(ctx)) }, nil

	default:
		return nil, func() error { return nil }, nil
	}
}

// OpenChatSession is like OpenSession, but falls back to a private in-memory
// SQLite session so that a chat keeps its history for the life of the
// process.
func OpenChatSession(ctx context.Context, cfg Config) (memory.Session, func() error, error) {
	if cfg.SessionEnabled() {
		return OpenSession(ctx, cfg)
	}
	id := uuid.NewString()
	s, err := memory.NewSQLiteSession(ctx, memory.SQLiteSessionParams{
		SessionID:        id,
		DBDataSourceName: "file:" + id + "?mode=memory&cache=shared",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open in-memory session: %w", err)
	}
	return s, s.Close, nil
}
