package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golandec/invoicebot/internal/models"
	"github.com/golandec/invoicebot/internal/sheets"
	"github.com/golandec/invoicebot/internal/store"
)

// Provisioner is the subset of the sheets service the state machine uses.
type Provisioner interface {
	CopyTemplate(ctx context.Context) (string, error)
	Rename(ctx context.Context, artifactID, title string) error
	ReadCell(ctx context.Context, artifactID, cellRef string) (string, error)
	WriteCell(ctx context.Context, artifactID, cellRef, value string) error
	ExportPDF(ctx context.Context, artifactID string) ([]byte, error)
	Delete(ctx context.Context, artifactID string) error
	Title(ctx context.Context, artifactID string) (string, error)
}

// Flow identifies one of the multi-step conversations a button can start.
type Flow string

const (
	FlowRegister Flow = "register"
	FlowCreate   Flow = "create"
	FlowSearch   Flow = "search"
	FlowPDF      Flow = "pdf"
)

// User-facing flow messages.
const (
	msgCancelled      = "Вы отменили процесс."
	msgStorageError   = "Произошла ошибка при работе с базой данных. Пожалуйста, попробуйте позже."
	msgCopyError      = "Произошла ошибка при создании таблицы. Пожалуйста, попробуйте позже."
	msgExportError    = "Произошла ошибка при экспорте таблицы в PDF. Пожалуйста, попробуйте позже."
	msgInvalidName    = "Имя содержит недопустимые символы. Пожалуйста, используйте только буквы, пробелы и дефисы."
	msgInvalidPhone   = "Неверный формат номера телефона. Введите номер в формате +7xxxxxxxxxx."
	msgClientIDDigits = "ID клиента должен состоять только из цифр. Пожалуйста, попробуйте снова."
	msgClientNotFound = "Клиент с таким ID не найден. Пожалуйста, проверьте ID и попробуйте снова."
	msgInvalidLink    = "Пожалуйста, отправьте корректную ссылку на Google Таблицу."
)

// stateEntry is one row of the transition table: the prompt issued on entry
// and the handler for the user's reply.
type stateEntry struct {
	prompt string
	handle func(ctx context.Context, e *Engine, sess *Session, text string) error
}

// Engine drives the per-chat flow state machine. One instance serves all
// chats; per-chat state lives in the SessionStore.
type Engine struct {
	sessions SessionStore
	store    *store.Store
	prov     Provisioner
	adapter  Adapter

	cities    []string
	readCell  string // balance cell on a previously issued artifact
	writeCell string // balance cell on a freshly copied artifact

	out   io.Writer
	table map[State]stateEntry
}

// EngineOpts holds parameters for creating an Engine.
type EngineOpts struct {
	Sessions    SessionStore
	Store       *store.Store
	Provisioner Provisioner
	Adapter     Adapter

	Cities           []string
	BalanceReadCell  string
	BalanceWriteCell string

	Out io.Writer
}

// NewEngine creates an Engine and verifies the transition table covers every
// declared state.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Sessions == nil {
		return nil, fmt.Errorf("bot: session store is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("bot: store is required")
	}
	if opts.Provisioner == nil {
		return nil, fmt.Errorf("bot: provisioner is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bot: adapter is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	e := &Engine{
		sessions:  opts.Sessions,
		store:     opts.Store,
		prov:      opts.Provisioner,
		adapter:   opts.Adapter,
		cities:    opts.Cities,
		readCell:  opts.BalanceReadCell,
		writeCell: opts.BalanceWriteCell,
		out:       opts.Out,
	}
	e.table = map[State]stateEntry{
		StateRegFirstName: {
			prompt: "Введите имя клиента:",
			handle: handleRegFirstName,
		},
		StateRegLastName: {
			prompt: "Введите фамилию клиента:",
			handle: handleRegLastName,
		},
		StateRegPhone: {
			prompt: "Введите номер телефона клиента (формат +7xxxxxxxxxx):",
			handle: handleRegPhone,
		},
		StateRegCity: {
			prompt: "Введите город клиента:",
			handle: handleRegCity,
		},
		StateCreateClientID: {
			prompt: "Пожалуйста, введите ID клиента, для которого необходимо создать таблицу:",
			handle: handleCreateClientID,
		},
		StateCreateManager: {
			prompt: "Пожалуйста, введите имя менеджера.",
			handle: handleCreateManager,
		},
		StateSearchPhone: {
			prompt: "Введите номер телефона клиента для поиска в формате +7xxxxxxxxxx:",
			handle: handleSearchPhone,
		},
		StatePDFLink: {
			prompt: "Отправьте ссылку на Google Таблицу, чтобы получить её в формате PDF.",
			handle: handlePDFLink,
		},
	}
	for _, st := range allStates {
		if _, ok := e.table[st]; !ok {
			return nil, fmt.Errorf("bot: no transition entry for state %q", st)
		}
	}
	return e, nil
}

// initialState maps a flow to its entry state.
func initialState(flow Flow) (State, error) {
	switch flow {
	case FlowRegister:
		return StateRegFirstName, nil
	case FlowCreate:
		return StateCreateClientID, nil
	case FlowSearch:
		return StateSearchPhone, nil
	case FlowPDF:
		return StatePDFLink, nil
	default:
		return "", fmt.Errorf("bot: unknown flow %q", flow)
	}
}

// StartFlow begins a flow for a chat. Any in-flight flow for the same chat
// is superseded: its pending artifact is compensated and its session dropped
// before the new one starts.
func (e *Engine) StartFlow(ctx context.Context, chatID int64, flow Flow) error {
	st, err := initialState(flow)
	if err != nil {
		return err
	}

	if old, ok := e.sessions.Get(chatID); ok {
		e.compensate(ctx, old)
		e.clearPrompt(ctx, old)
		e.sessions.Remove(chatID)
	}

	sess := &Session{
		ChatID: chatID,
		State:  st,
		Fields: make(map[string]string),
	}
	e.sessions.Put(chatID, sess)
	e.prompt(ctx, sess, e.table[st].prompt)
	return nil
}

// HasSession reports whether a flow is in progress for the chat.
func (e *Engine) HasSession(chatID int64) bool {
	_, ok := e.sessions.Get(chatID)
	return ok
}

// Input feeds one text message into the chat's in-flight flow. It reports
// false when the chat has no session, leaving the message to the Q&A path.
func (e *Engine) Input(ctx context.Context, chatID int64, text string) bool {
	sess, ok := e.sessions.Get(chatID)
	if !ok {
		return false
	}
	entry, ok := e.table[sess.State]
	if !ok {
		// Unreachable given the construction check, but fail closed.
		fmt.Fprintf(e.out, "[bot] chat %d in unknown state %q, dropping session\n", chatID, sess.State)
		e.sessions.Remove(chatID)
		return false
	}
	if err := entry.handle(ctx, e, sess, strings.TrimSpace(text)); err != nil {
		fmt.Fprintf(e.out, "[bot] chat %d state %s: %v\n", chatID, sess.State, err)
		e.finish(ctx, sess, msgStorageError)
	}
	return true
}

// Cancel aborts the chat's in-flight flow, compensating any provisioned
// artifact that was never committed to the ledger. No-op when idle.
func (e *Engine) Cancel(ctx context.Context, chatID int64) {
	sess, ok := e.sessions.Get(chatID)
	if !ok {
		return
	}
	e.compensate(ctx, sess)
	e.clearPrompt(ctx, sess)
	e.sessions.Remove(chatID)
	e.send(ctx, Outbound{ChatID: chatID, Text: msgCancelled, Keyboard: MainKeyboard()})
}

// compensate deletes the session's uncommitted artifact, if any.
func (e *Engine) compensate(ctx context.Context, sess *Session) {
	if sess.PendingArtifact == "" {
		return
	}
	if err := e.prov.Delete(ctx, sess.PendingArtifact); err != nil {
		fmt.Fprintf(e.out, "[bot] chat %d: compensating delete of %s: %v\n", sess.ChatID, sess.PendingArtifact, err)
	}
	sess.PendingArtifact = ""
}

// prompt sends a flow prompt with the cancel keyboard, removing the previous
// prompt message first.
func (e *Engine) prompt(ctx context.Context, sess *Session, text string) {
	e.clearPrompt(ctx, sess)
	id := e.send(ctx, Outbound{ChatID: sess.ChatID, Text: text, Keyboard: CancelKeyboard()})
	sess.LastPromptID = id
	e.sessions.Put(sess.ChatID, sess)
}

// clearPrompt removes the previous prompt message, best-effort.
func (e *Engine) clearPrompt(ctx context.Context, sess *Session) {
	if sess.LastPromptID == 0 {
		return
	}
	if err := e.adapter.DeleteMessage(ctx, sess.ChatID, sess.LastPromptID); err != nil {
		fmt.Fprintf(e.out, "[bot] chat %d: delete prompt %d: %v\n", sess.ChatID, sess.LastPromptID, err)
	}
	sess.LastPromptID = 0
}

// advance moves the session to the next state and issues its prompt.
func (e *Engine) advance(ctx context.Context, sess *Session, next State) {
	sess.State = next
	e.sessions.Put(sess.ChatID, sess)
	e.prompt(ctx, sess, e.table[next].prompt)
}

// finish ends the flow: drops the session and sends a terminal message with
// the main keyboard.
func (e *Engine) finish(ctx context.Context, sess *Session, text string) {
	e.clearPrompt(ctx, sess)
	e.sessions.Remove(sess.ChatID)
	e.send(ctx, Outbound{ChatID: sess.ChatID, Text: text, Keyboard: MainKeyboard()})
}

// send delivers a message and logs delivery failures.
func (e *Engine) send(ctx context.Context, msg Outbound) int {
	id, err := e.adapter.Send(ctx, msg)
	if err != nil {
		fmt.Fprintf(e.out, "[bot] chat %d: send: %v\n", msg.ChatID, err)
		return 0
	}
	return id
}

// --- registration flow ---

func handleRegFirstName(ctx context.Context, e *Engine, sess *Session, text string) error {
	if !IsValidName(text) {
		e.prompt(ctx, sess, msgInvalidName)
		return nil
	}
	sess.Fields["first_name"] = text
	e.advance(ctx, sess, StateRegLastName)
	return nil
}

func handleRegLastName(ctx context.Context, e *Engine, sess *Session, text string) error {
	if !IsValidName(text) {
		e.prompt(ctx, sess, msgInvalidName)
		return nil
	}
	sess.Fields["last_name"] = text
	e.advance(ctx, sess, StateRegPhone)
	return nil
}

func handleRegPhone(ctx context.Context, e *Engine, sess *Session, text string) error {
	if !IsValidPhone(text) {
		e.prompt(ctx, sess, msgInvalidPhone)
		return nil
	}
	// Duplicate registration ends the flow immediately with the existing ID.
	existing, err := e.store.ClientByPhone(ctx, text)
	switch {
	case err == nil:
		e.finish(ctx, sess, fmt.Sprintf("Клиент с таким номером уже зарегистрирован под ID: %d", existing.ID))
		return nil
	case errors.Is(err, store.ErrNotFound):
		sess.Fields["phone"] = text
		e.advance(ctx, sess, StateRegCity)
		return nil
	default:
		return err
	}
}

func handleRegCity(ctx context.Context, e *Engine, sess *Session, text string) error {
	if !isAllowedCity(e.cities, text) {
		e.prompt(ctx, sess, "Город не найден в списке доступных. Доступные города: "+strings.Join(e.cities, ", "))
		return nil
	}
	id, err := e.store.CreateClient(ctx, sess.Fields["first_name"], sess.Fields["last_name"], sess.Fields["phone"], text)
	if err != nil {
		if errors.Is(err, store.ErrDuplicatePhone) {
			// Lost the race to a concurrent registration.
			if existing, lookupErr := e.store.ClientByPhone(ctx, sess.Fields["phone"]); lookupErr == nil {
				e.finish(ctx, sess, fmt.Sprintf("Клиент с таким номером уже зарегистрирован под ID: %d", existing.ID))
				return nil
			}
			e.finish(ctx, sess, "Клиент с таким номером уже зарегистрирован.")
			return nil
		}
		return err
	}
	e.finish(ctx, sess, fmt.Sprintf("Регистрация завершена. Уникальный ID клиента: %d", id))
	return nil
}

// --- invoice creation flow ---

func handleCreateClientID(ctx context.Context, e *Engine, sess *Session, text string) error {
	id, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		e.prompt(ctx, sess, msgClientIDDigits)
		return nil
	}
	_, err = e.store.ClientByID(ctx, uint(id))
	switch {
	case err == nil:
		sess.Fields["client_id"] = text
		e.advance(ctx, sess, StateCreateManager)
		return nil
	case errors.Is(err, store.ErrNotFound):
		e.prompt(ctx, sess, msgClientNotFound)
		return nil
	default:
		return err
	}
}

func handleCreateManager(ctx context.Context, e *Engine, sess *Session, text string) error {
	if text == "" {
		e.prompt(ctx, sess, e.table[StateCreateManager].prompt)
		return nil
	}
	sess.Fields["manager_name"] = text
	return e.issueInvoice(ctx, sess)
}

// issueInvoice is the terminal action of the creation flow. Step order is
// fixed: load client, best-effort balance refresh from the previous
// artifact, copy the template, best-effort rename and balance carry-over,
// ledger write, last-document update, reply with the link. Copy failure
// aborts with no ledger row; rename and cell writes never abort.
func (e *Engine) issueInvoice(ctx context.Context, sess *Session) error {
	clientID, err := strconv.ParseUint(sess.Fields["client_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bot: bad client id %q: %w", sess.Fields["client_id"], err)
	}
	client, err := e.store.ClientByID(ctx, uint(clientID))
	if err != nil {
		return err
	}

	balance := ""
	if client.Balance != nil {
		balance = *client.Balance
	}
	if client.LastDocumentID != nil && *client.LastDocumentID != "" {
		val, err := e.prov.ReadCell(ctx, *client.LastDocumentID, e.readCell)
		if err != nil {
			fmt.Fprintf(e.out, "[bot] chat %d: refresh balance for client %d: %v\n", sess.ChatID, client.ID, err)
		} else {
			balance = val
			if err := e.store.UpdateBalance(ctx, client.ID, val); err != nil {
				fmt.Fprintf(e.out, "[bot] chat %d: store balance for client %d: %v\n", sess.ChatID, client.ID, err)
			}
		}
	}

	artifactID, err := e.prov.CopyTemplate(ctx)
	if err != nil {
		fmt.Fprintf(e.out, "[bot] chat %d: copy template: %v\n", sess.ChatID, err)
		e.finish(ctx, sess, msgCopyError)
		return nil
	}
	sess.PendingArtifact = artifactID
	e.sessions.Put(sess.ChatID, sess)

	title := fmt.Sprintf("%s %s - %s %s", client.FirstName, client.LastName,
		sess.Fields["manager_name"], time.Now().Format("02.01.2006"))
	if err := e.prov.Rename(ctx, artifactID, title); err != nil {
		fmt.Fprintf(e.out, "[bot] chat %d: rename %s: %v\n", sess.ChatID, artifactID, err)
	}
	if balance != "" {
		if err := e.prov.WriteCell(ctx, artifactID, e.writeCell, balance); err != nil {
			fmt.Fprintf(e.out, "[bot] chat %d: carry balance to %s: %v\n", sess.ChatID, artifactID, err)
		}
	}

	// A cancel may have raced the provisioning calls above. If the session
	// is gone, the flow is dead: make sure the artifact is too, and skip
	// the ledger write.
	if cur, ok := e.sessions.Get(sess.ChatID); !ok || cur != sess {
		if sess.PendingArtifact != "" {
			e.compensate(ctx, sess)
		}
		return nil
	}

	now := time.Now()
	doc := &models.IssuedDocument{
		ArtifactID:   artifactID,
		ChatID:       sess.ChatID,
		FirstName:    client.FirstName,
		LastName:     client.LastName,
		City:         client.City,
		Phone:        client.Phone,
		ManagerName:  sess.Fields["manager_name"],
		ClientID:     client.ID,
		CreatedAt:    now,
		LastOpenedAt: now,
	}
	if err := e.store.RecordIssuedDocument(ctx, doc); err != nil {
		return err
	}
	sess.PendingArtifact = ""
	if err := e.store.UpdateLastDocument(ctx, client.ID, artifactID); err != nil {
		fmt.Fprintf(e.out, "[bot] chat %d: update last document for client %d: %v\n", sess.ChatID, client.ID, err)
	}

	e.finish(ctx, sess, "Таблица создана и доступна по ссылке: "+sheets.URL(artifactID))
	return nil
}

// --- lookup flow ---

func handleSearchPhone(ctx context.Context, e *Engine, sess *Session, text string) error {
	if !IsValidPhone(text) {
		e.prompt(ctx, sess, msgInvalidPhone)
		return nil
	}
	client, err := e.store.ClientByPhone(ctx, text)
	switch {
	case err == nil:
		e.finish(ctx, sess, fmt.Sprintf("ID клиента с номером телефона %s: %d", text, client.ID))
		return nil
	case errors.Is(err, store.ErrNotFound):
		e.finish(ctx, sess, "Клиент с таким номером не найден.")
		return nil
	default:
		return err
	}
}

// --- PDF export flow ---

func handlePDFLink(ctx context.Context, e *Engine, sess *Session, text string) error {
	if !strings.Contains(text, "docs.google.com/spreadsheets") {
		e.prompt(ctx, sess, msgInvalidLink)
		return nil
	}
	artifactID := sheets.ExtractID(text)
	if artifactID == "" {
		e.prompt(ctx, sess, msgInvalidLink)
		return nil
	}

	data, err := e.prov.ExportPDF(ctx, artifactID)
	if err != nil {
		fmt.Fprintf(e.out, "[bot] chat %d: export %s: %v\n", sess.ChatID, artifactID, err)
		e.finish(ctx, sess, msgExportError)
		return nil
	}
	name := "Счет-фактура"
	if title, err := e.prov.Title(ctx, artifactID); err == nil && title != "" {
		name = title
	}

	e.clearPrompt(ctx, sess)
	e.sessions.Remove(sess.ChatID)
	e.send(ctx, Outbound{
		ChatID:   sess.ChatID,
		Keyboard: MainKeyboard(),
		Document: &Document{
			Name:    name + ".pdf",
			Data:    data,
			Caption: "Вот ваша счет-фактура в формате PDF.",
		},
	})
	return nil
}
