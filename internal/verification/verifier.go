package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultWindow      = 300 * time.Second
	DefaultMaxAttempts = 5
	DefaultSendTimeout = 10 * time.Second

	mailSubject = "TDLS verification code"
)

var ErrTransport = errors.New("failed to deliver verification mail")

// Outcome is the result of checking a submitted code
type Outcome int

const (
	Timeout Outcome = iota + 1
	WrongCode
	Success
)

func (o Outcome) String() string {
	switch o {
	case Timeout:
		return "timeout"
	case WrongCode:
		return "wrong_code"
	case Success:
		return "success"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Mailer delivers a rendered HTML message synchronously
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type Verifier struct {
	store       Store
	mailer      Mailer
	window      time.Duration
	maxAttempts int
	sendTimeout time.Duration
	now         func() time.Time
}

type Option func(*Verifier)

// WithWindow sets how long an issued code stays valid
func WithWindow(d time.Duration) Option {
	return func(v *Verifier) { v.window = d }
}

// WithMaxAttempts sets how many wrong codes are tolerated before the entry
// is dropped
func WithMaxAttempts(n int) Option {
	return func(v *Verifier) { v.maxAttempts = n }
}

// WithSendTimeout bounds the call to the Mailer
func WithSendTimeout(d time.Duration) Option {
	return func(v *Verifier) { v.sendTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

func New(store Store, mailer Mailer, opts ...Option) *Verifier {
	v := &Verifier{
		store:       store,
		mailer:      mailer,
		window:      DefaultWindow,
		maxAttempts: DefaultMaxAttempts,
		sendTimeout: DefaultSendTimeout,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue sends a fresh code to email and makes it the only live code for that
// address. Nothing is stored when the mail can't be delivered.
func (v *Verifier) Issue(ctx context.Context, email string) (string, error) {
	id := normalize(email)

	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	sendCtx, cancel := context.WithTimeout(ctx, v.sendTimeout)
	defer cancel()

	if err := v.mailer.Send(sendCtx, email, mailSubject, renderMessage(code, v.window)); err != nil {
		return "", fmt.Errorf("%w, %w", ErrTransport, err)
	}

	err = v.store.Put(ctx, id, Entry{Code: code, IssuedAt: v.now()}, v.window)
	if err != nil {
		return "", err
	}

	return code, nil
}

// Verify checks code against the live entry of email. A correct code
// consumes the entry. Wrong codes count towards the attempt limit, after
// which the entry is dropped and a new code has to be issued. The check and
// the write back happen in one store Update, so concurrent calls can't reuse
// a code or exceed the limit.
func (v *Verifier) Verify(ctx context.Context, email, code string) (Outcome, error) {
	var out Outcome

	err := v.store.Update(ctx, normalize(email), func(e *Entry) (bool, time.Duration) {
		if e == nil {
			out = Timeout
			return false, 0
		}

		elapsed := v.now().Sub(e.IssuedAt)
		if elapsed >= v.window {
			out = Timeout
			return false, 0
		}

		if subtle.ConstantTimeCompare([]byte(code), []byte(e.Code)) != 1 {
			out = WrongCode
			e.Attempts++

			return e.Attempts < v.maxAttempts, v.window - elapsed
		}

		out = Success
		return false, 0
	})
	if err != nil {
		return 0, err
	}

	return out, nil
}

// Window is how long an issued code stays valid
func (v *Verifier) Window() time.Duration {
	return v.window
}

// Close releases the underlying store
func (v *Verifier) Close() error {
	return v.store.Close()
}

func renderMessage(code string, window time.Duration) string {
	return fmt.Sprintf("<html><body><div>Verification code: <strong>%s</strong></div>"+
		"<p>This code will expire in %d minutes.</p></body></html>", code, int(window.Minutes()))
}
