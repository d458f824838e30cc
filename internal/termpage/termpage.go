// Package termpage hosts the entry page in a terminal. Lines read from the
// input are the page's events: "1" activates librarian mode, "2" opens the
// patron email form, and while the form is open every other line is an
// email submission.
package termpage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/dalemusser/libgate/entry"
)

// Page is a terminal rendition of the entry page. It implements
// entry.Navigator and entry.Alerter, and provides the page Elements.
type Page struct {
	in          io.Reader
	out         io.Writer
	base        *url.URL
	interactive bool

	mu        sync.Mutex // guards out, navigated and navTo
	navigated bool
	navTo     string
	navigate  chan struct{}

	librarian trigger
	patron    trigger
	form      *form
}

// New returns a page reading events from in and rendering to out. Relative
// navigation targets are resolved against base (nil leaves them as given).
// When interactive is false no menu or prompts are printed.
func New(in io.Reader, out io.Writer, base *url.URL, interactive bool) *Page {
	p := &Page{
		in:          in,
		out:         out,
		base:        base,
		interactive: interactive,
		navigate:    make(chan struct{}),
	}
	p.form = &form{page: p}
	return p
}

// Elements returns the page's coupling points for entry.Wire.
func (p *Page) Elements() entry.Elements {
	return entry.Elements{
		Librarian: &p.librarian,
		Patron:    &p.patron,
		Form:      p.form,
	}
}

// NavigateTo prints the target and ends the page: Run returns after the
// first navigation, as a browser would leave the page.
func (p *Page) NavigateTo(target string) {
	if p.base != nil {
		if ref, err := url.Parse(target); err == nil {
			target = p.base.ResolveReference(ref).String()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "→ %s\n", target)
	if !p.navigated {
		p.navigated = true
		p.navTo = target
		close(p.navigate)
	}
}

// Alert prints msg on its own line.
func (p *Page) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "! %s\n", msg)
}

// Navigated returns the URL of the first navigation, or "" before any.
func (p *Page) Navigated() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navTo
}

func (p *Page) left() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigated
}

// Run dispatches input lines as page events, one at a time, until the input
// ends, the page navigates away, the user types "q", or ctx is done.
func (p *Page) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(p.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			case <-p.navigate:
				return
			}
		}
		readErr <- sc.Err()
		close(lines)
	}()

	p.menu()
	for {
		// A handler may have navigated away; the page takes no more events.
		if p.left() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-p.navigate:
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if done := p.dispatch(strings.TrimSpace(line)); done {
				return nil
			}
		}
	}
}

func (p *Page) dispatch(line string) (quit bool) {
	switch strings.ToLower(line) {
	case "q", "quit", "exit":
		return true
	case "1", "librarian":
		p.librarian.activate()
		return false
	case "2", "user", "patron":
		p.patron.activate()
		return false
	}
	if p.form.isVisible() {
		p.form.submit(line)
		return false
	}
	p.menu()
	return false
}

func (p *Page) menu() {
	p.prompt("1) Librarian mode\n2) User mode\nq) Quit\n> ")
}

func (p *Page) prompt(s string) {
	if !p.interactive {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, s)
}

type trigger struct {
	handlers []func()
}

func (t *trigger) OnActivate(fn func()) { t.handlers = append(t.handlers, fn) }

func (t *trigger) activate() {
	for _, fn := range t.handlers {
		fn()
	}
}

type form struct {
	page     *Page
	handlers []func(entry.Event)

	mu      sync.Mutex
	visible bool
	value   string
}

func (f *form) OnSubmit(fn func(entry.Event)) { f.handlers = append(f.handlers, fn) }

func (f *form) Show() {
	f.mu.Lock()
	f.visible = true
	f.mu.Unlock()
	f.page.prompt("email: ")
}

func (f *form) Email() entry.Field { return (*field)(f) }

func (f *form) isVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

func (f *form) submit(value string) {
	f.mu.Lock()
	f.value = value
	f.mu.Unlock()
	for _, fn := range f.handlers {
		fn(&event{})
	}
}

// field is the form's email input.
type field form

func (f *field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *field) Focus() { f.page.prompt("email: ") }

// event has no default action to prevent; a terminal never reloads.
type event struct{}

func (event) PreventDefault() {}
