package schedule

import (
	"fmt"
	"strings"

	"github.com/chrond/chrond/errors"
)

// Mailer delivers a single message. Implementations live outside this
// package so the notification logic stays transport-agnostic.
type Mailer interface {
	Send(from string, to []string, subject, body string) error
}

// Notifier decides who hears about a run and sends the mail.
type Notifier struct {
	mailer        Mailer
	from          string
	subjectPrefix string
	siteBaseURL   string
}

// NewNotifier creates a notifier. A nil mailer disables delivery.
func NewNotifier(mailer Mailer, from, subjectPrefix, siteBaseURL string) *Notifier {
	return &Notifier{
		mailer:        mailer,
		from:          from,
		subjectPrefix: subjectPrefix,
		siteBaseURL:   siteBaseURL,
	}
}

// Notify mails the run outcome. Failed runs always go to the error
// subscribers. Successful runs go to the info subscribers only when they
// produced output; a silent success is not worth a message. Returns the
// transport error, if any.
func (n *Notifier) Notify(job *Job, log *Log) error {
	if n.mailer == nil {
		return nil
	}

	var recipients []string
	switch {
	case !log.Success:
		recipients = subscriberAddresses(job.ErrorSubscribers)
	case log.Stdout != "" || log.Stderr != "":
		recipients = subscriberAddresses(job.InfoSubscribers)
	default:
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}

	subject, body := RenderMessage(n.subjectPrefix, n.siteBaseURL, job, log)
	if err := n.mailer.Send(n.from, recipients, subject, body); err != nil {
		return errors.Wrapf(err, "failed to notify subscribers of job %s", job.ID)
	}
	return nil
}

// RenderMessage builds the notification subject and body for a run. A
// failure body carries the stderr text and a reference to the run log; a
// success body carries the stdout text.
func RenderMessage(subjectPrefix, siteBaseURL string, job *Job, log *Log) (subject, body string) {
	status := "completed"
	if !log.Success {
		status = "failed"
	}
	subject = fmt.Sprintf("%s%s %s", subjectPrefix, job.Name, status)

	var b strings.Builder
	fmt.Fprintf(&b, "Job:    %s\n", job.Name)
	fmt.Fprintf(&b, "Run at: %s\n", log.RunDate.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Result: %s\n", status)

	if !log.Success {
		fmt.Fprintf(&b, "Log:    %s\n", logReference(siteBaseURL, log))
		if log.Stderr != "" {
			fmt.Fprintf(&b, "\n%s\n", log.Stderr)
		}
		return subject, b.String()
	}

	if log.Stdout != "" {
		fmt.Fprintf(&b, "\n%s\n", log.Stdout)
	}
	return subject, b.String()
}

// FormatRecipient renders a subscriber as a display-name address,
// preferring the full name and falling back to the username.
func FormatRecipient(sub Subscriber) string {
	if sub.FullName != "" {
		return fmt.Sprintf("%q <%s>", sub.FullName, sub.Email)
	}
	if sub.Username != "" {
		return fmt.Sprintf("%q <%s>", sub.Username, sub.Email)
	}
	return sub.Email
}

func logReference(siteBaseURL string, log *Log) string {
	if siteBaseURL == "" {
		return log.ID
	}
	return strings.TrimRight(siteBaseURL, "/") + "/logs/" + log.ID
}

func subscriberAddresses(subs []Subscriber) []string {
	seen := make(map[string]struct{}, len(subs))
	addrs := make([]string, 0, len(subs))
	for _, sub := range subs {
		if sub.Email == "" {
			continue
		}
		if _, ok := seen[sub.Email]; ok {
			continue
		}
		seen[sub.Email] = struct{}{}
		addrs = append(addrs, FormatRecipient(sub))
	}
	return addrs
}
