// entrytest/page.go
package entrytest

import (
	"sync"

	"github.com/dalemusser/libgate/entry"
)

// Window records navigations and alerts. Safe for concurrent use.
type Window struct {
	mu          sync.Mutex
	navigations []string
	alerts      []string
}

// NavigateTo implements entry.Navigator.
func (w *Window) NavigateTo(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.navigations = append(w.navigations, url)
}

// Alert implements entry.Alerter.
func (w *Window) Alert(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alerts = append(w.alerts, msg)
}

// Navigations returns every URL navigated to, in order.
func (w *Window) Navigations() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.navigations...)
}

// Alerts returns every alert shown, in order.
func (w *Window) Alerts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.alerts...)
}

// Field is an email input with a settable value.
type Field struct {
	mu    sync.Mutex
	value string
	focus int
}

// NewField returns a field holding value.
func NewField(value string) *Field { return &Field{value: value} }

// Set replaces the value.
func (f *Field) Set(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
}

// Value implements entry.Field.
func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Focus implements entry.Field.
func (f *Field) Focus() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focus++
}

// Focused reports how many times Focus was called.
func (f *Field) Focused() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focus
}

// Event is a submission event recording PreventDefault.
type Event struct {
	mu        sync.Mutex
	prevented bool
}

// PreventDefault implements entry.Event.
func (e *Event) PreventDefault() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prevented = true
}

// Prevented reports whether PreventDefault was called.
func (e *Event) Prevented() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prevented
}

// Trigger is a control whose handlers run on Activate.
type Trigger struct {
	handlers []func()
}

// OnActivate implements entry.Trigger.
func (t *Trigger) OnActivate(fn func()) { t.handlers = append(t.handlers, fn) }

// Activate runs the bound handlers, as a click would.
func (t *Trigger) Activate() {
	for _, fn := range t.handlers {
		fn()
	}
}

// Bound reports whether anything was bound to the trigger.
func (t *Trigger) Bound() bool { return len(t.handlers) > 0 }

// Form is the email form backed by a Field.
type Form struct {
	field    *Field
	handlers []func(entry.Event)
	mu       sync.Mutex
	shown    int
}

// NewForm returns a form whose email field holds value.
func NewForm(value string) *Form { return &Form{field: NewField(value)} }

// OnSubmit implements entry.Form.
func (f *Form) OnSubmit(fn func(entry.Event)) { f.handlers = append(f.handlers, fn) }

// Show implements entry.Form.
func (f *Form) Show() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown++
}

// Shown reports how many times Show was called.
func (f *Form) Shown() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shown
}

// Email implements entry.Form.
func (f *Form) Email() entry.Field { return f.field }

// Field returns the concrete field for setting values in tests.
func (f *Form) Field() *Field { return f.field }

// Bound reports whether a submit handler was bound.
func (f *Form) Bound() bool { return len(f.handlers) > 0 }

// Submit fires a submission event and returns it.
func (f *Form) Submit() *Event {
	ev := &Event{}
	for _, fn := range f.handlers {
		fn(ev)
	}
	return ev
}

var (
	_ entry.Navigator = (*Window)(nil)
	_ entry.Alerter   = (*Window)(nil)
	_ entry.Field     = (*Field)(nil)
	_ entry.Event     = (*Event)(nil)
	_ entry.Trigger   = (*Trigger)(nil)
	_ entry.Form      = (*Form)(nil)
)
