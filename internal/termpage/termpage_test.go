package termpage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/libgate/entry"
)

// syncBuffer lets submission goroutines and the test share output.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func run(t *testing.T, p *Page) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestPage_LibrarianNavigatesAndEnds(t *testing.T) {
	var out syncBuffer
	base, _ := url.Parse("http://library.local:8080")
	p := New(strings.NewReader("1\n2\nnever@read.me\n"), &out, base, false)

	els := p.Elements()
	els.Librarian.OnActivate(func() { p.NavigateTo("/tables") })
	var submitted bool
	els.Form.OnSubmit(func(entry.Event) { submitted = true })

	run(t, p)

	if got := p.Navigated(); got != "http://library.local:8080/tables" {
		t.Errorf("Navigated = %q, want resolved librarian URL", got)
	}
	if out.String() != "→ http://library.local:8080/tables\n" {
		t.Errorf("output = %q", out.String())
	}
	if submitted {
		t.Error("page kept dispatching events after navigating away")
	}
}

func TestPage_FormOpensOnPatronTrigger(t *testing.T) {
	var out syncBuffer
	p := New(strings.NewReader("user@example.com\n2\n  user@example.com \nq\nlate@example.com\n"), &out, nil, false)

	els := p.Elements()
	els.Patron.OnActivate(els.Form.Show)
	var values []string
	els.Form.OnSubmit(func(ev entry.Event) {
		ev.PreventDefault()
		values = append(values, els.Form.Email().Value())
	})

	run(t, p)

	// The line before "2" is ignored: the form was hidden.
	if len(values) != 1 || values[0] != "user@example.com" {
		t.Errorf("submitted values = %q, want one trimmed email", values)
	}
	if p.Navigated() != "" {
		t.Errorf("Navigated = %q, want none", p.Navigated())
	}
}

func TestPage_AlertsAndPrompts(t *testing.T) {
	var out syncBuffer
	p := New(strings.NewReader("2\n"), &out, nil, true)
	els := p.Elements()
	els.Patron.OnActivate(els.Form.Show)

	run(t, p)
	p.Alert("Please enter a valid email.")
	els.Form.Email().Focus()

	got := out.String()
	for _, want := range []string{"1) Librarian mode", "email: ", "! Please enter a valid email.\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q does not contain %q", got, want)
		}
	}
	if strings.Count(got, "email: ") != 2 {
		t.Errorf("output %q: want the email prompt on show and on focus", got)
	}
}

func TestPage_ContextCancelStops(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	p := New(pr, &syncBuffer{}, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPage_NavigateOnlyOnce(t *testing.T) {
	var out syncBuffer
	p := New(strings.NewReader(""), &out, nil, false)

	p.NavigateTo("/a")
	p.NavigateTo("/b")

	if p.Navigated() != "/a" {
		t.Errorf("Navigated = %q, want /a", p.Navigated())
	}
}

func TestPage_NavigateToEmptyTargetOnce(t *testing.T) {
	var out syncBuffer
	p := New(strings.NewReader("1\n"), &out, nil, false)

	p.NavigateTo("")
	p.NavigateTo("")

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := out.String(), "→ \n→ \n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
