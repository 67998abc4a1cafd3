package wheel

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestCallbackCodec(t *testing.T) {
	for _, action := range []string{ActionSpin, ActionDismiss, ActionRefresh} {
		data := encodeCallback(action, 123456789012)
		if !IsWheelCallback(data) {
			t.Fatalf("%q must be recognised as a wheel callback", data)
		}
		if len(data) > 64 {
			t.Errorf("callback data %q exceeds 64 bytes", data)
		}

		p, err := decodeCallback(data)
		if err != nil {
			t.Fatalf("decodeCallback(%q): %v", data, err)
		}
		if p.Action != action || p.Owner != 123456789012 {
			t.Errorf("unexpected payload %+v", p)
		}
	}
}

func TestDecodeCallbackRejects(t *testing.T) {
	for _, data := range []string{
		"admin:grant",
		"w:{broken",
		`w:{"a":"explode","u":1}`,
	} {
		if _, err := decodeCallback(data); err == nil {
			t.Errorf("decodeCallback(%q) must fail", data)
		}
	}
}

type stubIssuer struct {
	token string
	err   error
}

func (s stubIssuer) Issue(int64) (string, error) { return s.token, s.err }

func TestMiniAppLink(t *testing.T) {
	h := NewHandler(nil, nil, 0)
	if link := h.miniAppLink(1); link != "" {
		t.Errorf("no mini app configured, got %q", link)
	}

	h.WithMiniApp("https://wheel.example.org/app?theme=dark", stubIssuer{token: "abc.def"})
	link := h.miniAppLink(1)
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("bad link %q: %v", link, err)
	}
	if u.Query().Get("token") != "abc.def" || u.Query().Get("theme") != "dark" {
		t.Errorf("unexpected link %q", link)
	}

	h.WithMiniApp("https://wheel.example.org/app", stubIssuer{err: errors.New("boom")})
	if link := h.miniAppLink(1); link != "" {
		t.Errorf("issuer error must hide the button, got %q", link)
	}
}

func TestFormatWait(t *testing.T) {
	if got := formatWait(45 * time.Minute); got != "45 мин" {
		t.Errorf("got %q", got)
	}
	if got := formatWait(5*time.Hour + 7*time.Minute); got != "5 ч 7 мин" {
		t.Errorf("got %q", got)
	}
}

func TestIsNotModified(t *testing.T) {
	err := errors.New("Bad Request: message is not modified: specified new message content and reply markup are exactly the same")
	if !isNotModified(err) {
		t.Error("Expected not-modified error to be recognised")
	}
	if isNotModified(errors.New("Forbidden: bot was blocked by the user")) {
		t.Error("unexpected match")
	}
	if !strings.HasPrefix(encodeCallback(ActionSpin, 1), callbackPrefix) {
		t.Error("missing prefix")
	}
}
