package bot

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golandec/invoicebot/internal/sheets"
	"github.com/golandec/invoicebot/internal/store"
)

const msgWelcome = "Добро пожаловать! Выберите действие:"

// Responder answers free-text questions. Implementations must not return an
// error: failures surface as user-readable fallback text.
type Responder interface {
	Answer(ctx context.Context, question string) string
}

// Router dispatches inbound events: button callbacks start or cancel flows,
// commands hit the admin handlers, in-flow text feeds the engine, and
// everything else falls through to the question log plus the knowledge
// responder.
type Router struct {
	engine    *Engine
	store     *store.Store
	responder Responder
	adapter   Adapter

	admins      map[int64]struct{}
	invoicePage int
	out         io.Writer
}

// RouterOpts holds parameters for creating a Router.
type RouterOpts struct {
	Engine    *Engine
	Store     *store.Store
	Responder Responder
	Adapter   Adapter

	AdminIDs    []int64
	InvoicePage int // max ledger rows per "my invoices" reply

	Out io.Writer
}

// NewRouter creates a Router.
func NewRouter(opts RouterOpts) (*Router, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("bot: engine is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("bot: store is required")
	}
	if opts.Responder == nil {
		return nil, fmt.Errorf("bot: responder is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bot: adapter is required")
	}
	if opts.InvoicePage <= 0 {
		opts.InvoicePage = 15
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	admins := make(map[int64]struct{}, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = struct{}{}
	}
	return &Router{
		engine:      opts.Engine,
		store:       opts.Store,
		responder:   opts.Responder,
		adapter:     opts.Adapter,
		admins:      admins,
		invoicePage: opts.InvoicePage,
		out:         opts.Out,
	}, nil
}

// Handle processes one inbound event to completion.
func (r *Router) Handle(ctx context.Context, ev Inbound) {
	if ev.CallbackID != "" {
		r.handleCallback(ctx, ev)
		return
	}
	r.handleText(ctx, ev)
}

func (r *Router) handleCallback(ctx context.Context, ev Inbound) {
	if err := r.adapter.AckCallback(ctx, ev.CallbackID, ""); err != nil {
		fmt.Fprintf(r.out, "[bot] chat %d: ack callback: %v\n", ev.ChatID, err)
	}

	switch ev.CallbackData {
	case cbCancel:
		r.engine.Cancel(ctx, ev.ChatID)
	case cbRegisterClient:
		r.startFlow(ctx, ev.ChatID, FlowRegister)
	case cbCreateInvoice:
		r.startFlow(ctx, ev.ChatID, FlowCreate)
	case cbSearchClient:
		r.startFlow(ctx, ev.ChatID, FlowSearch)
	case cbSheetToPDF:
		r.startFlow(ctx, ev.ChatID, FlowPDF)
	case cbMyInvoices:
		r.listInvoices(ctx, ev.ChatID)
	default:
		fmt.Fprintf(r.out, "[bot] chat %d: unknown callback %q\n", ev.ChatID, ev.CallbackData)
	}
}

func (r *Router) startFlow(ctx context.Context, chatID int64, flow Flow) {
	if err := r.engine.StartFlow(ctx, chatID, flow); err != nil {
		fmt.Fprintf(r.out, "[bot] chat %d: start flow %s: %v\n", chatID, flow, err)
	}
}

func (r *Router) handleText(ctx context.Context, ev Inbound) {
	text := strings.TrimSpace(ev.Text)

	switch text {
	case "/start":
		r.send(ctx, Outbound{ChatID: ev.ChatID, Text: msgWelcome, Keyboard: MainKeyboard()})
		return
	case "/allquestions":
		r.handleAllQuestions(ctx, ev)
		return
	case "/getalldataclients":
		r.handleAllClients(ctx, ev)
		return
	}

	if r.engine.Input(ctx, ev.ChatID, text) {
		return
	}
	r.answerQuestion(ctx, ev.ChatID, text)
}

// answerQuestion logs the question and replies with a grounded completion.
// The log write is best-effort: a storage failure never blocks the answer.
func (r *Router) answerQuestion(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	question := strings.ToLower(text)
	if err := r.store.RecordQuestion(ctx, chatID, question); err != nil {
		fmt.Fprintf(r.out, "[bot] chat %d: record question: %v\n", chatID, err)
	}
	answer := r.responder.Answer(ctx, question)
	r.send(ctx, Outbound{ChatID: chatID, Text: answer, Keyboard: MainKeyboard()})
}

// listInvoices replies with the chat's most recent issued invoices.
func (r *Router) listInvoices(ctx context.Context, chatID int64) {
	docs, err := r.store.DocumentsForChat(ctx, chatID, r.invoicePage)
	if err != nil {
		fmt.Fprintf(r.out, "[bot] chat %d: list invoices: %v\n", chatID, err)
		r.send(ctx, Outbound{ChatID: chatID, Text: msgStorageError, Keyboard: MainKeyboard()})
		return
	}
	if len(docs) == 0 {
		r.send(ctx, Outbound{ChatID: chatID, Text: "У вас пока нет созданных счет-фактур.", Keyboard: MainKeyboard()})
		return
	}

	var b strings.Builder
	b.WriteString("Ваши последние счет-фактуры:\n")
	for _, d := range docs {
		fmt.Fprintf(&b, "%s %s - %s %s\n%s\n", d.FirstName, d.City, d.ManagerName,
			d.CreatedAt.Format("02.01.2006"), sheets.URL(d.ArtifactID))
	}
	r.sendChunked(ctx, chatID, b.String(), MainKeyboard())
}

// sendChunked splits long text across messages; only the final chunk carries
// the keyboard.
func (r *Router) sendChunked(ctx context.Context, chatID int64, text string, kb Keyboard) {
	chunks := SplitMessage(text, MaxMessageLen)
	for i, chunk := range chunks {
		msg := Outbound{ChatID: chatID, Text: chunk}
		if i == len(chunks)-1 {
			msg.Keyboard = kb
		}
		r.send(ctx, msg)
	}
}

func (r *Router) send(ctx context.Context, msg Outbound) {
	if _, err := r.adapter.Send(ctx, msg); err != nil {
		fmt.Fprintf(r.out, "[bot] chat %d: send: %v\n", msg.ChatID, err)
	}
}

func (r *Router) isAdmin(userID int64) bool {
	_, ok := r.admins[userID]
	return ok
}
