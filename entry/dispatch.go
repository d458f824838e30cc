// entry/dispatch.go
package entry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// OutcomeKind classifies the server's answer to a patron lookup.
type OutcomeKind int

const (
	// Redirected: the server redirected and the client followed it.
	Redirected OutcomeKind = iota + 1
	// Anomalous: 2xx without a redirect. The server redirects on success,
	// so this is shown to the patron as an error carrying the body text.
	Anomalous
	// NotFound: any other status.
	NotFound
)

func (k OutcomeKind) String() string {
	switch k {
	case Redirected:
		return "redirected"
	case Anomalous:
		return "anomalous"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Outcome is the interpreted response to one POST.
type Outcome struct {
	Kind   OutcomeKind
	Status int
	// Location is the final URL after redirects (Redirected only).
	Location string
	// Body is the response text (Anomalous only).
	Body string
}

// Dispatcher posts email candidates to the identity endpoint.
type Dispatcher struct {
	client   *http.Client
	endpoint string
}

// NewDispatcher returns a Dispatcher posting to userPath resolved against
// baseURL. A nil client uses http.DefaultClient. The client must follow
// redirects (the default CheckRedirect does).
func NewDispatcher(baseURL, userPath string, client *http.Client) (*Dispatcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	ref, err := url.Parse(userPath)
	if err != nil {
		return nil, fmt.Errorf("parse user path %q: %w", userPath, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{
		client:   client,
		endpoint: base.ResolveReference(ref).String(),
	}, nil
}

// Endpoint is the absolute URL requests are posted to.
func (d *Dispatcher) Endpoint() string { return d.endpoint }

// Resolve issues one POST with body email=<email> and classifies the
// response. Errors cover request construction, transport failures, and a
// failed body read on the Anomalous branch. There is no retry and no
// deadline beyond what ctx carries.
func (d *Dispatcher) Resolve(ctx context.Context, email string) (Outcome, error) {
	form := url.Values{}
	form.Set("email", email)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("post %s: %w", d.endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case wasRedirected(resp):
		_, _ = io.Copy(io.Discard, resp.Body)
		return Outcome{Kind: Redirected, Status: resp.StatusCode, Location: resp.Request.URL.String()}, nil
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return Outcome{}, fmt.Errorf("read response body: %w", err)
		}
		return Outcome{Kind: Anomalous, Status: resp.StatusCode, Body: string(b)}, nil
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return Outcome{Kind: NotFound, Status: resp.StatusCode}, nil
	}
}

// wasRedirected reports whether the final request was issued by following a
// redirect. http.Client records the redirect response on the next request.
func wasRedirected(resp *http.Response) bool {
	return resp.Request != nil && resp.Request.Response != nil
}
