package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrond/chrond/errors"
)

type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	from    string
	to      []string
	subject string
	body    string
}

func (m *fakeMailer) Send(from string, to []string, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{from: from, to: to, subject: subject, body: body})
	return nil
}

func notifyFixtures() (*Job, *Log) {
	job := &Job{
		ID:   "job-1",
		Name: "nightly-report",
		InfoSubscribers: []Subscriber{
			{FullName: "Ana Ruiz", Email: "ana@example.com"},
		},
		ErrorSubscribers: []Subscriber{
			{FullName: "Ops Team", Email: "ops@example.com"},
		},
	}
	log := &Log{
		ID:      "log-1",
		JobID:   "job-1",
		RunDate: time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
		Stdout:  "42 rows\n",
		Success: true,
	}
	return job, log
}

func TestNotifySuccessWithOutput(t *testing.T) {
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, "chrond@example.com", "[chrond] ", "https://chrond.example.com")
	job, log := notifyFixtures()

	require.NoError(t, notifier.Notify(job, log))
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	assert.Equal(t, "chrond@example.com", mail.from)
	assert.Equal(t, []string{`"Ana Ruiz" <ana@example.com>`}, mail.to)
	assert.Equal(t, "[chrond] nightly-report completed", mail.subject)
	assert.Contains(t, mail.body, "42 rows")
}

func TestNotifySilentSuccessSendsNothing(t *testing.T) {
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, "chrond@example.com", "", "")
	job, log := notifyFixtures()
	log.Stdout = ""
	log.Stderr = ""

	require.NoError(t, notifier.Notify(job, log))
	assert.Empty(t, mailer.sent)
}

func TestNotifyFailureGoesToErrorSubscribersOnly(t *testing.T) {
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, "chrond@example.com", "", "https://chrond.example.com")
	job, log := notifyFixtures()
	log.Success = false
	log.Stderr = "exploded\n"

	require.NoError(t, notifier.Notify(job, log))
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	assert.Equal(t, []string{`"Ops Team" <ops@example.com>`}, mail.to)
	assert.Equal(t, "nightly-report failed", mail.subject)
	assert.Contains(t, mail.body, "exploded")
	assert.Contains(t, mail.body, "https://chrond.example.com/logs/log-1")
	// Failure bodies carry stderr and the log reference, not stdout.
	assert.NotContains(t, mail.body, "42 rows")
}

func TestNotifyFailureWithoutOutputStillSends(t *testing.T) {
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, "chrond@example.com", "", "")
	job, log := notifyFixtures()
	log.Success = false
	log.Stdout = ""
	log.Stderr = ""

	require.NoError(t, notifier.Notify(job, log))
	assert.Len(t, mailer.sent, 1)
}

func TestNotifyNoRecipients(t *testing.T) {
	mailer := &fakeMailer{}
	notifier := NewNotifier(mailer, "chrond@example.com", "", "")
	job, log := notifyFixtures()
	job.InfoSubscribers = nil

	require.NoError(t, notifier.Notify(job, log))
	assert.Empty(t, mailer.sent)
}

func TestNotifyNilMailer(t *testing.T) {
	notifier := NewNotifier(nil, "", "", "")
	job, log := notifyFixtures()

	assert.NoError(t, notifier.Notify(job, log))
}

func TestNotifyTransportError(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp refused")}
	notifier := NewNotifier(mailer, "chrond@example.com", "", "")
	job, log := notifyFixtures()

	err := notifier.Notify(job, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp refused")
}

func TestFormatRecipient(t *testing.T) {
	assert.Equal(t, `"Ana Ruiz" <ana@example.com>`,
		FormatRecipient(Subscriber{FullName: "Ana Ruiz", Username: "ana", Email: "ana@example.com"}))
	assert.Equal(t, `"ana" <ana@example.com>`,
		FormatRecipient(Subscriber{Username: "ana", Email: "ana@example.com"}))
	assert.Equal(t, "bare@example.com",
		FormatRecipient(Subscriber{Email: "bare@example.com"}))
}

func TestRenderMessage(t *testing.T) {
	job, log := notifyFixtures()

	subject, body := RenderMessage("[x] ", "https://x.test/", job, log)
	assert.Equal(t, "[x] nightly-report completed", subject)
	assert.Contains(t, body, "Job:    nightly-report")
	assert.Contains(t, body, "42 rows")

	log.Success = false
	log.Stderr = "warning: stale cache\n"
	subject, body = RenderMessage("[x] ", "https://x.test/", job, log)
	assert.Equal(t, "[x] nightly-report failed", subject)
	assert.Contains(t, body, "https://x.test/logs/log-1")
	assert.Contains(t, body, "warning: stale cache")
}
