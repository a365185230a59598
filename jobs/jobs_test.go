package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/eapdesk/eapdesk/internal/jobs"
	"github.com/eapdesk/eapdesk/internal/masterdata/contracts"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeStore struct {
	expired   int64
	due       []contracts.ExpiryNotice
	notified  map[int64]time.Time
	expireErr error
	today     time.Time
	horizon   time.Duration
}

func (s *fakeStore) ExpireEnded(_ context.Context, today time.Time) (int64, error) {
	s.today = today
	return s.expired, s.expireErr
}

func (s *fakeStore) DueForNotice(_ context.Context, _ time.Time, horizon time.Duration) ([]contracts.ExpiryNotice, error) {
	s.horizon = horizon
	return s.due, nil
}

func (s *fakeStore) MarkNotified(_ context.Context, id int64, at time.Time) error {
	if s.notified == nil {
		s.notified = map[int64]time.Time{}
	}
	s.notified[id] = at
	return nil
}

type fakeEnqueuer struct {
	sent   []SendEmailPayload
	errFor map[string]error
}

func (f *fakeEnqueuer) EnqueueSendEmail(_ context.Context, p SendEmailPayload, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if err := f.errFor[p.To]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, p)
	return &asynq.TaskInfo{Queue: QueueDefault}, nil
}

func newExpiryJob(store ContractStore, mail EmailEnqueuer, now time.Time) *ContractExpiryJob {
	job := NewContractExpiryJob(store, mail, 30*24*time.Hour, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return now }
	return job
}

func TestContractExpiryScan(t *testing.T) {
	now := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	store := &fakeStore{
		expired: 2,
		due: []contracts.ExpiryNotice{
			{ContractID: 10, Reference: "EAP-10", EndDate: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), ClientName: "Acme", ContactEmail: "hr@acme.test"},
			{ContractID: 11, Reference: "EAP-11", EndDate: time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), ClientName: "Globex", ContactEmail: "hr@globex.test"},
		},
	}
	mail := &fakeEnqueuer{}

	res, err := newExpiryJob(store, mail, now).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Expired)
	assert.Equal(t, 2, res.Notified)
	assert.Equal(t, now, store.today)
	assert.Equal(t, 30*24*time.Hour, store.horizon)

	require.Len(t, mail.sent, 2)
	assert.Equal(t, "hr@acme.test", mail.sent[0].To)
	assert.Equal(t, "Contract EAP-10 ends on 2024-06-20", mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].Body, "20 June 2024")
	assert.Equal(t, now, store.notified[10])
	assert.Equal(t, now, store.notified[11])
}

func TestContractExpiryScanNoticeFailures(t *testing.T) {
	now := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	store := &fakeStore{due: []contracts.ExpiryNotice{
		{ContractID: 1, Reference: "A", EndDate: now, ContactEmail: "dup@example.test"},
		{ContractID: 2, Reference: "B", EndDate: now, ContactEmail: "down@example.test"},
	}}
	mail := &fakeEnqueuer{errFor: map[string]error{
		"dup@example.test":  asynq.ErrTaskIDConflict,
		"down@example.test": errors.New("redis down"),
	}}

	res, err := newExpiryJob(store, mail, now).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Equal(t, 1, res.Notified)
	assert.Contains(t, store.notified, int64(1))
	assert.NotContains(t, store.notified, int64(2))
}

func TestContractExpiryScanStopsWhenExpireFails(t *testing.T) {
	store := &fakeStore{expireErr: errors.New("db down"), due: []contracts.ExpiryNotice{{ContractID: 1}}}
	mail := &fakeEnqueuer{}

	err := newExpiryJob(store, mail, time.Now()).Handle(context.Background(), NewContractExpiryScanTask())
	require.Error(t, err)
	assert.Empty(t, mail.sent)
}

type recordingMailer struct {
	got []Message
	err error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.got = append(m.got, msg)
	return m.err
}

func TestSendEmailJob(t *testing.T) {
	mailer := &recordingMailer{}
	job := NewSendEmailJob(mailer, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewSendEmailTask(SendEmailPayload{To: "a@example.test", Subject: "Hi", Body: "Body"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []Message{{To: "a@example.test", Subject: "Hi", Body: "Body"}}, mailer.got)

	err = job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	mailer.err = errors.New("smtp down")
	err = job.Handle(context.Background(), task)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestSMTPMailerRendersMessage(t *testing.T) {
	m := NewSMTPMailer("mail.local", 1025, "no-reply@eapdesk.test")
	m.now = func() time.Time { return time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC) }
	var addr, from string
	var to []string
	var body []byte
	m.send = func(a string, _ smtp.Auth, f string, rcpt []string, msg []byte) error {
		addr, from, to, body = a, f, rcpt, msg
		return nil
	}

	require.NoError(t, m.Send(context.Background(), Message{To: "hr@acme.test", Subject: "Renewal", Body: "line one\nline two"}))
	assert.Equal(t, "mail.local:1025", addr)
	assert.Equal(t, "no-reply@eapdesk.test", from)
	assert.Equal(t, []string{"hr@acme.test"}, to)
	assert.Contains(t, string(body), "Subject: Renewal\r\n")
	assert.True(t, strings.HasSuffix(string(body), "\r\n\r\nline one\r\nline two"))

	err := m.Send(context.Background(), Message{To: "a@b.test\r\nBcc: x@y.test", Subject: "x"})
	assert.Error(t, err)
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

type allowAll struct{}

func (allowAll) Require(string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{"queue info", fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Retry: 1}}, http.StatusOK, 4},
		{"queue not created yet", fakeInspector{err: asynq.ErrQueueNotFound}, http.StatusOK, 0},
		{"redis down", fakeInspector{err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Route("/api/jobs", NewHandler(tc.inspector, allowAll{}, discard).MountRoutes)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/health", nil))
			require.Equal(t, tc.status, rr.Code)
			if tc.status != http.StatusOK {
				return
			}
			var h Health
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &h))
			assert.Equal(t, QueueDefault, h.Queue)
			assert.Equal(t, tc.pending, h.Pending)
		})
	}
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}
