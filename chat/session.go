// Copyright 2025 Poiesic Systems
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


package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/callvista/callsight/ai"
	"github.com/callvista/callsight/search"
)

// Session is one interactive conversation over the call corpora. It holds
// the turn history and the recency-filter flag for the session's searches.
// A Session is not safe for concurrent use.
type Session struct {
	id       string
	searcher Searcher
	model    ai.ChatModel
	history  []ai.Message
	recent   bool
	logger   *slog.Logger
}

// Searcher is the retrieval capability a session needs.
type Searcher interface {
	SearchAll(ctx context.Context, query string, recent bool) (*search.Results, error)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecencyFilter sets the initial recency-filter state.
// Default is enabled.
func WithRecencyFilter(enabled bool) SessionOption {
	return func(s *Session) {
		s.recent = enabled
	}
}

// NewSession creates a conversation session.
func NewSession(searcher Searcher, model ai.ChatModel, opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.NewString(),
		searcher: searcher,
		model:    model,
		recent:   true,
		logger:   slog.Default().With("component", "chat"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

// Id returns the session identifier.
func (s *Session) Id() string {
	return s.id
}

// RecencyFilter returns whether searches are restricted to recent calls.
func (s *Session) RecencyFilter() bool {
	return s.recent
}

// SetRecencyFilter toggles the recency restriction for subsequent turns.
func (s *Session) SetRecencyFilter(enabled bool) {
	s.recent = enabled
}

// Ask runs one conversation turn: search all corpora, assemble context,
// generate a reply, and append citations for the sources the reply used.
func (s *Session) Ask(ctx context.Context, query string) (string, error) {
	results, err := s.searcher.SearchAll(ctx, query, s.recent)
	if err != nil {
		return "", fmt.Errorf("searching calls: %w", err)
	}

	prompt := fmt.Sprintf("Context from calls:\n%s\n\nUser question: %s", FormatContext(results), query)

	reply, err := s.model.Reply(ctx, s.history, prompt)
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	s.history = append(s.history,
		ai.Message{Role: ai.RoleUser, Content: prompt},
		ai.Message{Role: ai.RoleAssistant, Content: reply},
	)

	s.logger.Debug("turn complete",
		"summaries", len(results.Summaries),
		"segments", len(results.Segments),
		"features", len(results.Features))

	return FormatResponse(reply, results), nil
}
