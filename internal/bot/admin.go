package bot

import (
	"context"
	"fmt"
	"strings"
)

const msgNotAdmin = "У вас нет прав на выполнение этой команды."

// handleAllQuestions dumps the question log. Admin-only.
func (r *Router) handleAllQuestions(ctx context.Context, ev Inbound) {
	if !r.isAdmin(ev.UserID) {
		r.send(ctx, Outbound{ChatID: ev.ChatID, Text: msgNotAdmin})
		return
	}
	questions, err := r.store.AllQuestions(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "[bot] chat %d: all questions: %v\n", ev.ChatID, err)
		r.send(ctx, Outbound{ChatID: ev.ChatID, Text: msgStorageError})
		return
	}
	if len(questions) == 0 {
		r.send(ctx, Outbound{ChatID: ev.ChatID, Text: "Вопросы не найдены."})
		return
	}

	var b strings.Builder
	b.WriteString("Заданные вопросы:\n")
	for _, q := range questions {
		fmt.Fprintf(&b, "%d. [%s %s] %s\n", q.ID, q.Date, q.Time, q.Question)
	}
	r.sendChunked(ctx, ev.ChatID, b.String(), nil)
}

// handleAllClients dumps the client roster. Admin-only.
func (r *Router) handleAllClients(ctx context.Context, ev Inbound) {
	if !r.isAdmin(ev.UserID) {
		r.send(ctx, Outbound{ChatID: ev.ChatID, Text: msgNotAdmin})
		return
	}
	clients, err := r.store.ListClients(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "[bot] chat %d: list clients: %v\n", ev.ChatID, err)
		r.send(ctx, Outbound{ChatID: ev.ChatID, Text: msgStorageError})
		return
	}
	if len(clients) == 0 {
		r.send(ctx, Outbound{ChatID: ev.ChatID, Text: "База данных клиентов пуста."})
		return
	}

	var b strings.Builder
	b.WriteString("Зарегистрированные клиенты:\n")
	for _, c := range clients {
		balance := "-"
		if c.Balance != nil && *c.Balance != "" {
			balance = *c.Balance
		}
		fmt.Fprintf(&b, "ID: %d | %s %s | %s | %s | Баланс: %s\n",
			c.ID, c.FirstName, c.LastName, c.Phone, c.City, balance)
	}
	r.sendChunked(ctx, ev.ChatID, b.String(), nil)
}
