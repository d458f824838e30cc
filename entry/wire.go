// entry/wire.go
package entry

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Trigger is a clickable control on the page.
type Trigger interface {
	OnActivate(fn func())
}

// Form is the patron email form.
type Form interface {
	OnSubmit(fn func(Event))
	// Show reveals the form; hosts that always display it may no-op.
	Show()
	Email() Field
}

// Elements are the page's coupling points. A nil field means the host page
// does not have that element.
type Elements struct {
	Librarian Trigger
	Patron    Trigger
	Form      Form
}

// Binding tracks submissions started through Wire.
type Binding struct {
	wg sync.WaitGroup
}

// Wait blocks until every submission started so far has finished.
func (b *Binding) Wait() { b.wg.Wait() }

// Wire attaches the controller's actions to the page. Missing elements are
// logged and left inert; Wire never fails.
func Wire(ctx context.Context, c *Controller, els Elements) *Binding {
	b := &Binding{}

	if els.Librarian != nil {
		els.Librarian.OnActivate(c.EnterAsLibrarian)
	} else {
		c.logger.Error(c.msgs.LibrarianMissing)
	}

	if els.Patron != nil && els.Form != nil {
		form := els.Form
		els.Patron.OnActivate(form.Show)
		form.OnSubmit(func(ev Event) {
			b.wg.Add(1)
			done := c.Submit(ctx, ev, form.Email())
			go func() {
				defer b.wg.Done()
				res := <-done
				c.logger.Debug("submission finished", zap.String("result", string(res)))
			}()
		})
	} else {
		c.logger.Error(c.msgs.PatronMissing)
	}

	return b
}
