package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	"github.com/spec-kit/helpdesk-service/internal/kb"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/store"
)

const demoPassword = "helpdesk"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newArchivedTestApp(t, nil, nil)
}

// newArchivedTestApp wires the app with an audit archive; nil repositories
// leave the archive disabled.
func newArchivedTestApp(t *testing.T, notifications repository.NotificationRepository, history repository.TicketHistoryRepository) *fiber.App {
	t.Helper()
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zap.NewNop()

	st := store.New(store.Seed(now), store.WithClock(clock))
	directory, err := identity.NewDemoDirectory(demoPassword, bcrypt.MinCost)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret", 30)
	metrics := observability.NewMetrics()

	tickets := service.NewTicketService(st, directory, clock)
	knowledge := service.NewKnowledgeService(st, kb.NewRenderer(), logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-service", "test", nil),
		Users:          handlers.NewUsersHandler(service.NewAuthService(directory, tokens), directory),
		Tickets:        handlers.NewTicketsHandler(tickets, directory),
		StaffTickets:   handlers.NewStaffTicketsHandler(tickets, service.NewAssignmentService(st, directory), directory),
		Staff:          handlers.NewStaffHandler(tickets, service.NewArchiveService(notifications, history, st), directory, metrics),
		KB:             handlers.NewKBHandler(knowledge),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, directory),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := call(t, app, "POST", "/auth/login", "", map[string]string{"email": email, "password": demoPassword})
	require.Equal(t, 200, status, body)
	data := body["data"].(map[string]any)
	return data["auth"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestRouter_HealthAndUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, "GET", "/health/live", "", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "alive", body["status"])

	status, _ = call(t, app, "GET", "/health/ready", "", nil)
	assert.Equal(t, 200, status)

	status, body = call(t, app, "GET", "/nope", "", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRouter_LoginFailures(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, "POST", "/auth/login", "", map[string]string{"email": "may@example.com", "password": "nope"})
	assert.Equal(t, 401, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = call(t, app, "GET", "/tickets", "", nil)
	assert.Equal(t, 401, status)
	status, _ = call(t, app, "GET", "/me", "garbage", nil)
	assert.Equal(t, 401, status)
}

func TestRouter_RequesterFlow(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "may@example.com")

	status, body := call(t, app, "GET", "/me", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "u-001", body["data"].(map[string]any)["id"])

	status, body = call(t, app, "GET", "/tickets", token, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 2)

	status, body = call(t, app, "GET", "/tickets/IT-2025-0001", token, nil)
	require.Equal(t, 200, status)
	detail := body["data"].(map[string]any)
	assert.NotContains(t, detail, "internal_notes")
	assert.Equal(t, "Win", detail["assignee_name"])

	status, body = call(t, app, "POST", "/tickets", token, map[string]any{"subject": "No sound"})
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = call(t, app, "POST", "/tickets", token, map[string]any{
		"subject": "No sound", "description": "Headset silent", "category": "Hardware", "priority": "high",
	})
	require.Equal(t, 201, status, body)
	created := body["data"].(map[string]any)
	assert.Equal(t, "IT-2025-1001", created["id"])
	assert.Equal(t, "High", created["priority"])
	assert.Equal(t, "Open", created["status"])

	status, _ = call(t, app, "POST", "/tickets/IT-2025-1001/messages", token, map[string]string{"body": "still broken"})
	assert.Equal(t, 201, status)

	status, body = call(t, app, "POST", "/tickets/IT-2025-0002/close", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "Closed", body["data"].(map[string]any)["status"])

	status, body = call(t, app, "POST", "/tickets/IT-2025-0002/reopen", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "In Progress", body["data"].(map[string]any)["status"])

	status, _ = call(t, app, "POST", "/staff/tickets/IT-2025-0001/notes", token, map[string]string{"body": "x"})
	assert.Equal(t, 403, status)
}

func TestRouter_StaffFlow(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "win.it@example.com")

	status, body := call(t, app, "GET", "/tickets/IT-2025-0001", token, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"].(map[string]any)["internal_notes"], 1)

	status, body = call(t, app, "POST", "/staff/tickets/IT-2025-0002/status", token, map[string]string{"status": "Pending"})
	assert.Equal(t, 409, status)
	assert.Equal(t, "ILLEGAL_TRANSITION", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, []any{"Closed", "In Progress"}, details["allowed"])

	status, body = call(t, app, "POST", "/staff/tickets/IT-2025-0002/status", token, map[string]string{"status": "Reopened"})
	assert.Equal(t, 422, status)
	assert.Equal(t, "ILLEGAL_STATUS", errorCode(body))

	status, body = call(t, app, "POST", "/staff/tickets/IT-2025-0001/status", token, map[string]string{"status": "resolved", "note": "PSU swapped"})
	require.Equal(t, 200, status)
	assert.Equal(t, "Resolved", body["data"].(map[string]any)["status"])

	status, body = call(t, app, "POST", "/staff/tickets/IT-2025-0001/assign", token, map[string]any{"assignee_id": nil})
	require.Equal(t, 200, status)
	assert.Nil(t, body["data"].(map[string]any)["assignee_id"])

	status, body = call(t, app, "GET", "/staff/tickets/IT-2025-0001/transitions", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, []any{"Closed", "In Progress"}, body["data"].(map[string]any)["next"])

	status, body = call(t, app, "GET", "/staff/notifications", token, nil)
	require.Equal(t, 200, status)
	log := body["data"].([]any)
	require.Len(t, log, 2)
	assert.Equal(t, "Assignment of ticket IT-2025-0001 to unassigned e-mailed", log[0].(map[string]any)["message"])

	status, body = call(t, app, "GET", "/staff/dashboard", token, nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 2, body["data"].(map[string]any)["total"])

	status, body = call(t, app, "GET", "/staff/metrics", token, nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 4.6, body["data"].(map[string]any)["csat_score"])
}

func TestRouter_KnowledgeBase(t *testing.T) {
	app := newTestApp(t)
	staff := login(t, app, "yai.manager@example.com")

	status, body := call(t, app, "POST", "/staff/kb", staff, map[string]any{
		"title": "Printer setup", "content": "Use the **Add printer** wizard.", "category": "Hardware", "keywords": []string{"Printer"},
	})
	require.Equal(t, 201, status, body)
	draftID := body["data"].(map[string]any)["id"].(string)
	assert.Equal(t, "Draft", body["data"].(map[string]any)["status"])

	status, body = call(t, app, "GET", "/kb", "", nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 2)

	status, body = call(t, app, "GET", "/kb", staff, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 3)

	status, _ = call(t, app, "GET", "/kb/"+draftID, "", nil)
	assert.Equal(t, 404, status)

	status, body = call(t, app, "PUT", "/staff/kb/"+draftID, staff, map[string]any{
		"title": "Printer setup", "content": "Use the **Add printer** wizard.", "category": "Hardware", "status": "published",
	})
	require.Equal(t, 200, status, body)

	status, body = call(t, app, "GET", "/kb/"+draftID, "", nil)
	require.Equal(t, 200, status)
	assert.Contains(t, body["data"].(map[string]any)["html"], "<strong>Add printer</strong>")

	status, body = call(t, app, "POST", "/kb/kb-002/helpful", "", nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 29, body["data"].(map[string]any)["helpful_count"])

	status, body = call(t, app, "GET", "/kb/categories", "", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, []any{"Hardware", "Network", "Software"}, body["data"])

	status, _ = call(t, app, "DELETE", "/staff/kb/"+draftID, staff, nil)
	assert.Equal(t, 204, status)

	status, body = call(t, app, "GET", "/staff/kb/stats", staff, nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 2, body["data"].(map[string]any)["total"])
}

func TestRouter_AssignmentRoutes(t *testing.T) {
	app := newTestApp(t)
	manager := login(t, app, "yai.manager@example.com")

	status, body := call(t, app, "POST", "/staff/tickets/IT-2025-0001/self-assign", manager, nil)
	require.Equal(t, 200, status, body)
	assert.Equal(t, "u-003", body["data"].(map[string]any)["assignee_id"])

	status, body = call(t, app, "POST", "/staff/tickets/IT-2025-0001/auto-assign", manager, nil)
	require.Equal(t, 200, status, body)
	assert.Contains(t, []any{"u-002", "u-003"}, body["data"].(map[string]any)["assignee_id"])

	requester := login(t, app, "may@example.com")
	status, body = call(t, app, "POST", "/staff/tickets/IT-2025-0001/self-assign", requester, nil)
	assert.Equal(t, 403, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}

type memoryNotifications struct{ items []domain.Notification }

func (m *memoryNotifications) Insert(_ context.Context, n domain.Notification) error {
	m.items = append([]domain.Notification{n}, m.items...)
	return nil
}

func (m *memoryNotifications) ListRecent(_ context.Context, limit int) ([]domain.Notification, error) {
	if limit < len(m.items) {
		return m.items[:limit], nil
	}
	return m.items, nil
}

type memoryHistory struct{ byTicket map[string][]domain.StatusEvent }

func (m *memoryHistory) Append(_ context.Context, rec repository.StatusEventRecord) error {
	m.byTicket[rec.TicketID] = append(m.byTicket[rec.TicketID], rec.Event)
	return nil
}

func (m *memoryHistory) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusEvent, error) {
	return m.byTicket[ticketID], nil
}

func TestRouter_ArchiveDisabled(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "win.it@example.com")

	status, body := call(t, app, "GET", "/staff/notifications?source=archive", token, nil)
	assert.Equal(t, 503, status)
	assert.Equal(t, "UNAVAILABLE", errorCode(body))

	status, body = call(t, app, "GET", "/staff/tickets/IT-2025-0001/history", token, nil)
	assert.Equal(t, 503, status)
	assert.Equal(t, "UNAVAILABLE", errorCode(body))

	status, body = call(t, app, "GET", "/staff/notifications?source=cache", token, nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = call(t, app, "GET", "/staff/notifications?source=store", token, nil)
	assert.Equal(t, 200, status)
}

func TestRouter_ArchiveReads(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ticketID := "IT-2025-0042"
	notifications := &memoryNotifications{}
	require.NoError(t, notifications.Insert(context.Background(), domain.Notification{ID: "nt-1", Type: domain.NotificationTypeLog, Message: "older", CreatedAt: at}))
	require.NoError(t, notifications.Insert(context.Background(), domain.Notification{ID: "nt-2", Type: domain.NotificationTypeEmail, Message: "newer", TicketID: &ticketID, CreatedAt: at}))
	history := &memoryHistory{byTicket: map[string][]domain.StatusEvent{
		ticketID: {
			{Status: domain.TicketStatusOpen, ChangedBy: "u-001", ChangedAt: at},
			{Status: domain.TicketStatusCanceled, ChangedBy: "u-002", ChangedAt: at, Note: "duplicate"},
		},
	}}
	app := newArchivedTestApp(t, notifications, history)
	token := login(t, app, "yai.manager@example.com")

	status, body := call(t, app, "GET", "/staff/notifications?source=archive&limit=1", token, nil)
	require.Equal(t, 200, status, body)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "newer", items[0].(map[string]any)["message"])

	// A ticket from an earlier run is served even though the store lost it.
	status, body = call(t, app, "GET", "/staff/tickets/"+ticketID+"/history", token, nil)
	require.Equal(t, 200, status, body)
	entries := body["data"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "Canceled", entries[1].(map[string]any)["status"])
	assert.Equal(t, "duplicate", entries[1].(map[string]any)["note"])

	status, body = call(t, app, "GET", "/staff/tickets/IT-2025-0001/history", token, nil)
	require.Equal(t, 200, status, body)
	assert.Empty(t, body["data"])

	status, body = call(t, app, "GET", "/staff/tickets/IT-2025-9999/history", token, nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRouter_ChangeStatusAutoClose(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "win.it@example.com")

	status, body := call(t, app, "POST", "/staff/tickets/IT-2025-0001/status", token, map[string]any{"status": "Pending", "auto_close": true})
	require.Equal(t, 200, status, body)

	status, body = call(t, app, "GET", "/staff/notifications", token, nil)
	require.Equal(t, 200, status)
	log := body["data"].([]any)
	require.Len(t, log, 1)
	assert.Equal(t, "Ticket IT-2025-0001 status changed to Pending", log[0].(map[string]any)["message"])
}
