// entry/controller.go
package entry

import (
	"context"
	"fmt"

	"github.com/dalemusser/libgate/logging"
	"go.uber.org/zap"
)

// Navigator replaces the current page with url.
type Navigator interface {
	NavigateTo(url string)
}

// Alerter shows a message to the person at the page.
type Alerter interface {
	Alert(msg string)
}

// Field is the email input.
type Field interface {
	Value() string
	Focus()
}

// Event is a form submission event.
type Event interface {
	// PreventDefault stops the host from performing its own submission
	// (a full page reload in a browser).
	PreventDefault()
}

// Result is what one action ended in. Only metrics and tests look at it.
type Result string

const (
	ResultInvalid    Result = "invalid"
	ResultRedirected Result = "redirected"
	ResultAnomalous  Result = "anomalous"
	ResultNotFound   Result = "not_found"
	ResultFailed     Result = "failed"
)

// Observer receives one call per finished action. metrics.Recorder
// implements it.
type Observer interface {
	ObserveSubmission(Result)
	ObserveLibrarianEntry()
}

type nopObserver struct{}

func (nopObserver) ObserveSubmission(Result) {}
func (nopObserver) ObserveLibrarianEntry()   {}

// Options configures a Controller. Navigator, Alerter and Dispatcher are
// required.
type Options struct {
	Navigator     Navigator
	Alerter       Alerter
	Dispatcher    *Dispatcher
	LibrarianPath string
	Messages      Messages
	Logger        *zap.Logger
	Observer      Observer
}

// Controller holds the two entry actions.
type Controller struct {
	nav           Navigator
	alert         Alerter
	dispatch      *Dispatcher
	librarianPath string
	msgs          Messages
	logger        *zap.Logger
	obs           Observer
}

// NewController validates opts and fills defaults: English messages,
// a no-op logger and observer, and "/tables" as the librarian path.
func NewController(opts Options) (*Controller, error) {
	if opts.Navigator == nil || opts.Alerter == nil || opts.Dispatcher == nil {
		return nil, fmt.Errorf("entry: navigator, alerter and dispatcher are required")
	}
	c := &Controller{
		nav:           opts.Navigator,
		alert:         opts.Alerter,
		dispatch:      opts.Dispatcher,
		librarianPath: opts.LibrarianPath,
		msgs:          English.Merge(opts.Messages),
		logger:        opts.Logger,
		obs:           opts.Observer,
	}
	if c.librarianPath == "" {
		c.librarianPath = "/tables"
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.obs == nil {
		c.obs = nopObserver{}
	}
	return c, nil
}

// Messages returns the message set in use.
func (c *Controller) Messages() Messages { return c.msgs }

// EnterAsLibrarian navigates to the librarian route. Nothing is checked.
func (c *Controller) EnterAsLibrarian() {
	c.logger.Debug("entering librarian mode", zap.String("path", c.librarianPath))
	c.nav.NavigateTo(c.librarianPath)
	c.obs.ObserveLibrarianEntry()
}

// Submit handles a submission of the email form. Before returning it
// suppresses the host's default submission, reads the field, and rejects an
// invalid email; a valid one is resolved on its own goroutine. The returned
// channel yields exactly one Result.
//
// Submissions are independent: nothing stops a second one while the first
// is in flight, and ctx cancellation does not abort a request already
// started.
func (c *Controller) Submit(ctx context.Context, ev Event, field Field) <-chan Result {
	ev.PreventDefault()

	done := make(chan Result, 1)
	email, ok := c.readEmail(field)
	if !ok {
		done <- ResultInvalid
		return done
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		done <- c.resolve(ctx, email)
	}()
	return done
}

// RedirectToUser is Submit without an event, run to completion on the
// calling goroutine.
func (c *Controller) RedirectToUser(ctx context.Context, field Field) Result {
	email, ok := c.readEmail(field)
	if !ok {
		return ResultInvalid
	}
	return c.resolve(ctx, email)
}

func (c *Controller) readEmail(field Field) (string, bool) {
	email := TrimInput(field.Value())
	if ValidEmail(email) {
		return email, true
	}
	c.alert.Alert(c.msgs.InvalidEmail)
	field.Focus()
	c.obs.ObserveSubmission(ResultInvalid)
	return "", false
}

func (c *Controller) resolve(ctx context.Context, email string) Result {
	res := ResultFailed
	var out Outcome
	err := logging.Guard(c.logger, "resolve user", func() error {
		var err error
		out, err = c.dispatch.Resolve(ctx, email)
		return err
	})
	if err == nil {
		res = c.present(out)
	} else {
		c.logger.Error("error executing the request",
			zap.String("endpoint", c.dispatch.Endpoint()),
			zap.Error(err))
		c.alert.Alert(c.msgs.Failure)
	}
	c.obs.ObserveSubmission(res)
	return res
}

func (c *Controller) present(out Outcome) Result {
	switch out.Kind {
	case Redirected:
		c.nav.NavigateTo(out.Location)
		return ResultRedirected
	case Anomalous:
		c.logger.Info("server response", zap.Int("status", out.Status), zap.String("body", out.Body))
		c.alert.Alert(c.msgs.ErrorPrefix + out.Body)
		return ResultAnomalous
	default:
		c.alert.Alert(c.msgs.NotFound)
		return ResultNotFound
	}
}
