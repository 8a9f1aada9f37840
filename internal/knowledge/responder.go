// Package knowledge answers free-text questions by grounding an OpenAI chat
// completion in a static fact list.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// systemInstruction scopes the assistant to the delivery knowledge base.
// The "consult an administrator" fallback for out-of-base questions is part
// of the instruction, not computed locally.
const systemInstruction = "Ты ассистент. Используй следующую базу знаний для ответа на вопросы. " +
	"Доставка только в города России, Казахстана, Узбекистана и Беларуси. " +
	"Если у тебя спросят про доставку в город отсутствующий в базе, но в доступной стране, " +
	"то скажи, что доставка в этот город осуществляется через ближайший город из базы и вышли информацию о доставке в него. " +
	"Если ты не найдешь ответ в базе знаний, ответь: 'Проконсультируйтесь у Администратора +996 705 705 996'."

// User-facing failure messages.
const (
	// QuotaMessage is returned verbatim when the completion API reports an
	// exhausted quota.
	QuotaMessage = "Произошла ошибка при запросе к OpenAI API: превышена квота использования. Пожалуйста, проверьте план и детали биллинга."
	// FailureMessage is returned for any other completion failure.
	FailureMessage = "Извините, произошла ошибка при обработке вашего запроса."
)

// completionAPI abstracts the chat-completion call, enabling test fakes.
type completionAPI interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// realAPI wraps the official OpenAI client.
type realAPI struct {
	client openai.Client
}

func (r *realAPI) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return r.client.Chat.Completions.New(ctx, params)
}

// Responder answers questions grounded in the knowledge base.
type Responder struct {
	api   completionAPI
	model string
	facts []string
}

// Opts holds parameters for creating a Responder.
type Opts struct {
	APIKey string
	Model  string   // defaults to gpt-3.5-turbo
	Facts  []string // defaults to DefaultFacts

	// For testing: inject a fake completion API instead of a real client.
	API completionAPI
}

// New creates a Responder.
func New(opts Opts) (*Responder, error) {
	api := opts.API
	if api == nil {
		if opts.APIKey == "" {
			return nil, fmt.Errorf("knowledge: api key is required")
		}
		api = &realAPI{client: openai.NewClient(option.WithAPIKey(opts.APIKey))}
	}
	model := opts.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	facts := opts.Facts
	if len(facts) == 0 {
		facts = DefaultFacts
	}
	return &Responder{api: api, model: model, facts: facts}, nil
}

// Answer issues one grounded completion for the question and returns the
// text to send back to the chat. Failures never propagate: a quota error
// yields QuotaMessage, anything else FailureMessage.
func (r *Responder) Answer(ctx context.Context, question string) string {
	resp, err := r.api.Complete(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(r.buildPrompt(question)),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Code == "insufficient_quota") {
			log.Printf("knowledge: completion quota exceeded: %v", err)
			return QuotaMessage
		}
		log.Printf("knowledge: completion: %v", err)
		return FailureMessage
	}
	if len(resp.Choices) == 0 {
		log.Printf("knowledge: completion returned no choices")
		return FailureMessage
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

// buildPrompt concatenates the fact list into a single grounding block
// followed by the question.
func (r *Responder) buildPrompt(question string) string {
	var b strings.Builder
	b.WriteString("База знаний:\n")
	for _, fact := range r.facts {
		b.WriteString("Ответ: ")
		b.WriteString(fact)
		b.WriteByte('\n')
	}
	b.WriteString("Вопрос: ")
	b.WriteString(question)
	return b.String()
}
