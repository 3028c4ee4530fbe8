package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zoobzio/gaze"
)

type fakeSubmitter struct {
	lines []string
	got   []string
	err   error
	delay time.Duration
}

func (f *fakeSubmitter) Submit(ctx context.Context, line string) ([]string, error) {
	f.got = append(f.got, line)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.lines, f.err
}

func decode(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer resp.Body.Close()
	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return r
}

func TestServer_Status(t *testing.T) {
	sub := &fakeSubmitter{lines: []string{"STATUS:mood=calm,frames=3,freeRAM=100"}}
	s := New(sub)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/status", nil))
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	r := decode(t, resp)
	if len(r.Lines) != 1 || !strings.HasPrefix(r.Lines[0], "STATUS:") {
		t.Errorf("unexpected lines %q", r.Lines)
	}
	if sub.got[0] != "STATUS" {
		t.Errorf("expected STATUS submitted, got %q", sub.got)
	}
}

func TestServer_CommandJSON(t *testing.T) {
	sub := &fakeSubmitter{lines: []string{"MOOD:SWITCHING:angry"}}
	s := New(sub)

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{"command":"MOOD:angry"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if sub.got[0] != "MOOD:angry" {
		t.Errorf("expected MOOD:angry submitted, got %q", sub.got)
	}
}

func TestServer_CommandPlainText(t *testing.T) {
	sub := &fakeSubmitter{lines: []string{"AUTOCYCLE:off"}}
	s := New(sub)

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader("AUTOCYCLE:off\n"))
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK || sub.got[0] != "AUTOCYCLE:off" {
		t.Errorf("unexpected %d %q", resp.StatusCode, sub.got)
	}
}

func TestServer_UnknownMoodIsNotFound(t *testing.T) {
	sub := &fakeSubmitter{lines: []string{"UNKNOWN:MOOD:bogus"}}
	s := New(sub)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodPost, "/moods/bogus", nil))
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if sub.got[0] != "MOOD:bogus" {
		t.Errorf("expected MOOD:bogus submitted, got %q", sub.got)
	}
}

func TestServer_RejectsLongAndMultiLine(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(sub)

	long := strings.Repeat("x", gaze.MaxLineLength+1)
	for _, body := range []string{long, "STATUS\nSTATUS", "   "} {
		resp, err := s.App().Test(httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(body)))
		if err != nil {
			t.Fatalf("Test() error = %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", body, resp.StatusCode)
		}
	}
	if len(sub.got) != 0 {
		t.Errorf("expected nothing submitted, got %q", sub.got)
	}
}

func TestServer_StoppedController(t *testing.T) {
	s := New(&fakeSubmitter{err: gaze.ErrControllerStopped})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/moods", nil))
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestServer_Timeout(t *testing.T) {
	s := New(&fakeSubmitter{delay: time.Second}, WithTimeout(10*time.Millisecond))

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/status", nil))
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", resp.StatusCode)
	}
}
