// Package engine drives the questionnaire: it loads the user's session,
// validates the reply against the current step, moves along the catalog and
// renders the next prompt.
package engine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/internal/asset"
	"github.com/m3rciful/assetbot/internal/catalog"
	"github.com/m3rciful/assetbot/internal/session"
	"github.com/m3rciful/assetbot/internal/validate"
)

const component = "flow"

// Engine is safe for concurrent use; messages of one user are serialized
// through the session store lock.
type Engine struct {
	cat       *catalog.Catalog
	store     session.Store
	submitter Submitter
	now       func() time.Time
	timeout   time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSubmitTimeout bounds a single submission. Zero disables the deadline.
func WithSubmitTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.timeout = d
		}
	}
}

// New constructs an Engine.
func New(cat *catalog.Catalog, store session.Store, submitter Submitter, opts ...Option) *Engine {
	e := &Engine{
		cat:       cat,
		store:     store,
		submitter: submitter,
		now:       time.Now,
		timeout:   15 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start resets the user to idle and shows the entry menu.
func (e *Engine) Start(ctx context.Context, in Inbound) Reply {
	unlock := e.store.Lock(in.UserID)
	defer unlock()

	e.store.Delete(in.UserID)
	logger.Info(ctx, component, "flow.start", slog.Int64("user_id", in.UserID))
	return welcome()
}

// Cancel drops the session and hides the keyboard.
func (e *Engine) Cancel(ctx context.Context, in Inbound) Reply {
	unlock := e.store.Lock(in.UserID)
	defer unlock()

	sess, ok := e.store.Get(in.UserID)
	e.store.Delete(in.UserID)
	if ok {
		logger.Info(ctx, component, "flow.cancel",
			slog.String("session_id", sess.ID),
			slog.String("step", string(sess.Step)),
		)
	}
	return Reply{
		Text:     "Заполнение отменено. Чтобы начать заново, отправьте /start.",
		Keyboard: Keyboard{Remove: true},
	}
}

// Enter starts the questionnaire from idle. A user already in progress gets
// the current question again.
func (e *Engine) Enter(ctx context.Context, in Inbound) Reply {
	unlock := e.store.Lock(in.UserID)
	defer unlock()
	return e.enter(ctx, in, e.load(ctx, in))
}

// Back returns to the previous question without clearing any answer.
func (e *Engine) Back(ctx context.Context, in Inbound) Reply {
	unlock := e.store.Lock(in.UserID)
	defer unlock()
	return e.back(ctx, e.load(ctx, in))
}

// Handle routes a free-text message.
func (e *Engine) Handle(ctx context.Context, in Inbound) Reply {
	unlock := e.store.Lock(in.UserID)
	defer unlock()

	sess := e.load(ctx, in)
	text := strings.TrimSpace(in.Text)
	switch {
	case text == BackLabel:
		return e.back(ctx, sess)
	case sess.Step == catalog.Idle && text == EntryLabel:
		return e.enter(ctx, in, sess)
	case sess.Step == catalog.Idle:
		return entryMenu("Я не понял сообщение.")
	}
	return e.advance(ctx, sess, text)
}

// Status describes the current step without changing state.
func (e *Engine) Status(ctx context.Context, in Inbound) Reply {
	unlock := e.store.Lock(in.UserID)
	defer unlock()

	sess := e.load(ctx, in)
	step, ok := e.cat.Step(sess.Step)
	if !ok {
		return entryMenu("Сейчас нет активного заполнения.")
	}
	return Reply{Text: statusText(e.cat, step, &sess.Answers), Keyboard: stepKeyboard(step, &sess.Answers)}
}

// Help lists commands and keeps the keyboard of the current step.
func (e *Engine) Help(ctx context.Context, in Inbound) Reply {
	unlock := e.store.Lock(in.UserID)
	defer unlock()

	sess := e.load(ctx, in)
	kb := entryKeyboard()
	if step, ok := e.cat.Step(sess.Step); ok {
		kb = stepKeyboard(step, &sess.Answers)
	}
	return Reply{Text: helpText(), Keyboard: kb}
}

// Current returns the user's step and a copy of the answers.
func (e *Engine) Current(userID int64) (catalog.StepID, asset.Answers, bool) {
	sess, ok := e.store.Get(userID)
	if !ok {
		return catalog.Idle, asset.Answers{}, false
	}
	return sess.Step, sess.Answers, true
}

// InProgress reports whether the user is somewhere inside the questionnaire.
func (e *Engine) InProgress(userID int64) bool {
	step, _, _ := e.Current(userID)
	return step != catalog.Idle
}

// Sessions returns the number of live sessions.
func (e *Engine) Sessions() int {
	return e.store.Len()
}

// load returns the stored session or a fresh idle one. A step unknown to the
// catalog resets the session to idle.
func (e *Engine) load(ctx context.Context, in Inbound) *session.Session {
	sess, ok := e.store.Get(in.UserID)
	if !ok {
		sess = session.New(in.UserID, e.now())
	}
	if !e.cat.Contains(sess.Step) {
		logger.Warn(ctx, component, "flow.reset",
			slog.String("session_id", sess.ID),
			slog.String("step", string(sess.Step)),
			slog.String("reason", "unknown_step"),
		)
		sess.Step = catalog.Idle
	}
	if h := submitterHandle(in); h != "" {
		sess.Submitter = h
	}
	return sess
}

func (e *Engine) save(sess *session.Session) {
	sess.UpdatedAt = e.now()
	e.store.Put(sess)
}

func (e *Engine) enter(ctx context.Context, in Inbound, sess *session.Session) Reply {
	if sess.Step == catalog.Idle {
		sess.Step = e.cat.First()
		logger.Info(ctx, component, "flow.enter",
			slog.String("session_id", sess.ID),
			slog.Int64("user_id", in.UserID),
			slog.Int("assets", len(sess.Answers.Completed)),
		)
	}
	e.save(sess)
	step, _ := e.cat.Step(sess.Step)
	return prompt(step, &sess.Answers)
}

func (e *Engine) back(ctx context.Context, sess *session.Session) Reply {
	if sess.Step == catalog.Idle {
		return entryMenu("Вы в главном меню.")
	}
	prev := e.cat.Prev(sess.Step)
	logger.Info(ctx, component, "flow.back",
		slog.String("session_id", sess.ID),
		slog.String("step", string(sess.Step)),
		slog.String("next", string(prev)),
	)
	sess.Step = prev
	e.save(sess)
	if prev == catalog.Idle {
		return entryMenu("Вы вернулись в главное меню. Введённые ответы сохранены.")
	}
	step, _ := e.cat.Step(prev)
	return prompt(step, &sess.Answers)
}

func (e *Engine) advance(ctx context.Context, sess *session.Session, text string) Reply {
	step, _ := e.cat.Step(sess.Step)
	value, err := step.Resolve(&sess.Answers, text)
	if err != nil {
		code := "invalid"
		if r, ok := validate.AsRejection(err); ok {
			code = r.Code
		}
		logger.Info(ctx, component, "flow.reject",
			slog.String("session_id", sess.ID),
			slog.String("step", string(step.ID)),
			slog.String("err_code", code),
			slog.String("input", logger.SanitizeLimit(text, 64)),
		)
		return rejection(step, &sess.Answers, err)
	}
	if err := step.Apply(&sess.Answers, value); err != nil {
		logger.Error(ctx, component, "flow.apply",
			slog.String("session_id", sess.ID),
			slog.String("step", string(step.ID)),
			slog.String("err", err.Error()),
		)
		return rejection(step, &sess.Answers, err)
	}

	next := e.cat.Next(step.ID, value)
	logger.Info(ctx, component, "flow.advance",
		slog.String("session_id", sess.ID),
		slog.String("step", string(step.ID)),
		slog.String("next", string(next)),
	)
	if next == catalog.Submitted {
		return e.submit(ctx, sess)
	}
	sess.Step = next
	e.save(sess)
	nextStep, _ := e.cat.Step(next)
	return prompt(nextStep, &sess.Answers)
}

// submit hands the records to the Submitter and always deletes the session.
func (e *Engine) submit(ctx context.Context, sess *session.Session) Reply {
	defer e.store.Delete(sess.UserID)

	records, err := asset.Records(sess.Answers, sess.Submitter)
	if err != nil {
		logger.Error(ctx, component, "flow.submit",
			slog.String("session_id", sess.ID),
			slog.String("status", "error"),
			slog.String("err_code", "incomplete"),
			slog.String("err", err.Error()),
		)
		return failure(err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	start := e.now()
	err = e.submitter.Submit(ctx, records)
	attrs := []slog.Attr{
		slog.String("session_id", sess.ID),
		slog.String("status", logger.Status(err)),
		slog.Int("rows", len(records)),
		slog.Duration("took", logger.RoundMS(e.now().Sub(start))),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err_code", "store"), slog.String("err", err.Error()))
		logger.Error(ctx, component, "flow.submit", attrs...)
		return failure(err)
	}
	logger.Info(ctx, component, "flow.submit", attrs...)
	return summary(records)
}

func submitterHandle(in Inbound) string {
	if u := strings.TrimSpace(in.Username); u != "" {
		return "@" + strings.TrimPrefix(u, "@")
	}
	if d := strings.TrimSpace(in.DisplayName); d != "" {
		return d
	}
	if in.UserID != 0 {
		return strconv.FormatInt(in.UserID, 10)
	}
	return ""
}
