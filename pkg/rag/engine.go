// Package rag turns a free-text question into an answer grounded in the
// knowledge store, falling back to ungrounded or canned responses when
// retrieval or generation cannot deliver.
package rag

import (
	"context"
	"fmt"
	"strings"

	"ai-support-agent-be/internal/pkg/logger"
	"ai-support-agent-be/pkg/knowledge"
	"ai-support-agent-be/pkg/llm"
)

// Source attributes part of an answer to an ingested document.
type Source struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// ungroundedTemperature is the fixed sampling override for answers produced
// without retrieved context. Looser than the configured default on purpose.
const ungroundedTemperature = 0.7

var fallbackResponses = map[string]string{
	"en": "I apologize, but I'm having trouble answering that. Please try rephrasing your question.",
	"es": "Disculpe, tengo problemas para responder eso. Por favor, reformule su pregunta.",
	"fr": "Je m'excuse, j'ai du mal à répondre à cela. Veuillez reformuler votre question.",
}

const directAnswerApology = "I apologize, but I'm having trouble processing your request right now."

type Engine struct {
	store       *knowledge.Store
	provider    llm.LLMProvider
	temperature float64
	maxTokens   int
	topK        int
	logger      logger.ILogger
}

func NewEngine(store *knowledge.Store, provider llm.LLMProvider, temperature float64, maxTokens, topK int, log logger.ILogger) *Engine {
	return &Engine{
		store:       store,
		provider:    provider,
		temperature: temperature,
		maxTokens:   maxTokens,
		topK:        topK,
		logger:      log,
	}
}

// Query answers a question using the knowledge base. It never returns an
// error: generation failures degrade to a language-specific fallback string
// (empty source list), and a miss in the knowledge base degrades to an
// ungrounded answer.
func (e *Engine) Query(ctx context.Context, question, language string) (string, []Source) {
	e.logger.Debug("RAGEngine", "Processing query", map[string]interface{}{"question": truncate(question, 50)})

	relevant := e.store.Search(question, e.topK)
	if len(relevant) == 0 {
		return e.directAnswer(ctx, question), nil
	}

	contents := make([]string, len(relevant))
	for i, chunk := range relevant {
		contents[i] = chunk.Content
	}
	contextBlock := strings.Join(contents, "\n\n")

	prompt := fmt.Sprintf(`You are a helpful customer support agent. Use the following context to answer the question.

Context from knowledge base:
%s

Customer Question: %s

Instructions:
- Be polite and professional
- Answer based on the context provided
- If you don't know, say "I don't have that information in my knowledge base"
- Keep answers clear and concise

Your Response:`, contextBlock, question)

	answer, err := e.provider.Generate(ctx, prompt,
		llm.WithTemperature(e.temperature),
		llm.WithMaxTokens(e.maxTokens),
	)
	if err != nil {
		e.logger.Error("RAGEngine", "Query failed", map[string]interface{}{"error": err.Error()})
		return FallbackResponse(language), nil
	}

	sources := make([]Source, len(relevant))
	for i, chunk := range relevant {
		sources[i] = Source{
			Source:  chunk.SourceName,
			Content: chunk.Content,
		}
	}

	e.logger.Debug("RAGEngine", "Query processed successfully", nil)
	return strings.TrimSpace(answer), sources
}

// directAnswer asks the model without any retrieved context.
func (e *Engine) directAnswer(ctx context.Context, question string) string {
	prompt := fmt.Sprintf(`You are a helpful customer support agent. Answer this question professionally:

Question: %s

Answer:`, question)

	answer, err := e.provider.Generate(ctx, prompt, llm.WithTemperature(ungroundedTemperature))
	if err != nil {
		e.logger.Error("RAGEngine", "Direct answer failed", map[string]interface{}{"error": err.Error()})
		return directAnswerApology
	}
	return strings.TrimSpace(answer)
}

// FallbackResponse returns the canned degraded answer for a language,
// defaulting to English for unrecognized codes.
func FallbackResponse(language string) string {
	if resp, ok := fallbackResponses[language]; ok {
		return resp
	}
	return fallbackResponses["en"]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
