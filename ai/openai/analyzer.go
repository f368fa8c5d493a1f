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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/callvista/callsight/ai"
	"github.com/callvista/callsight/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Analyzer implements ai.CallAnalyzer using OpenAI-compatible chat APIs.
type Analyzer struct {
	client llms.Model
	logger *slog.Logger
}

// featureExtract is an internal type used for JSON unmarshaling.
// It matches the structure requested from the LLM.
type featureExtract struct {
	Request  string `json:"request"`
	Context  string `json:"context"`
	Priority string `json:"priority"`
}

// callAnalysis is the wrapper structure for the LLM's JSON response.
type callAnalysis struct {
	Summary         string           `json:"summary"`
	FeatureRequests []featureExtract `json:"feature_requests"`
	Sentiment       string           `json:"sentiment"`
}

// newAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAnalyzer(config *ai.Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.AnalysisModel),
	)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		client: client,
		logger: slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewAnalyzer creates a new call analyzer using the provided configuration.
//
// Returns ai.CallAnalyzer interface to enforce abstraction.
func NewAnalyzer(config *ai.Config) (ai.CallAnalyzer, error) {
	return newAnalyzer(config)
}

// Analyze extracts a summary, feature requests and sentiment from one chunk of
// transcript text. The model runs at temperature 0 with JSON output; malformed
// replies are repaired and reparsed up to 3 times before the call fails.
func (a *Analyzer) Analyze(ctx context.Context, transcriptText string) (core.AnalysisResult, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(analysisPromptTemplate + transcriptText),
			},
		},
	}

	var parsed callAnalysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			a.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return core.AnalysisResult{}, err
		}

		if len(response.Choices) < 1 {
			a.logger.Debug("no choices returned from model")
			return core.AnalysisResult{}, fmt.Errorf("model returned no choices")
		}

		responseText := stripFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
			lastErr = err
			a.logger.Warn("error parsing analysis response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		a.logger.Error("failed to parse analysis response after retries", "err", lastErr)
		return core.AnalysisResult{}, lastErr
	}

	result := core.AnalysisResult{
		Summary:         parsed.Summary,
		FeatureRequests: make([]core.FeatureExtract, 0, len(parsed.FeatureRequests)),
		Sentiment:       core.NormalizeSentiment(parsed.Sentiment),
	}
	for _, fr := range parsed.FeatureRequests {
		if fr.Request == "" {
			continue
		}
		result.FeatureRequests = append(result.FeatureRequests, core.FeatureExtract{
			Request:  fr.Request,
			Context:  fr.Context,
			Priority: core.NormalizePriority(fr.Priority),
		})
	}

	a.logger.Debug("analyzed transcript chunk",
		"chars", len(transcriptText),
		"features", len(result.FeatureRequests),
		"sentiment", result.Sentiment)

	return result, nil
}
