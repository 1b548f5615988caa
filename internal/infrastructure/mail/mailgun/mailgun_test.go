package mailgun

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quinn-backend/internal/application/port/output"
)

func TestSend(t *testing.T) {
	var gotPath, gotAuth string
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		user, pass, _ := r.BasicAuth()
		gotAuth = user + ":" + pass
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<msg-1@example.test>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL: srv.URL,
		Domain:  "mg.example.test",
		APIKey:  "key-secret",
		From:    "Quinn <quinn@mg.example.test>",
	})

	id, err := c.Send(context.Background(), output.OutboundEmail{
		To:      "info@plumberco.test",
		Subject: "Quote request",
		Text:    "Hello",
		ReplyTo: "abc123xyz789@quotes.example.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "<msg-1@example.test>", id)
	assert.Equal(t, "/v3/mg.example.test/messages", gotPath)
	assert.Equal(t, "api:key-secret", gotAuth)
	assert.Equal(t, "info@plumberco.test", gotForm.Get("to"))
	assert.Equal(t, "abc123xyz789@quotes.example.test", gotForm.Get("h:Reply-To"))
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Domain: "d", APIKey: "k", From: "f"})

	_, err := c.Send(context.Background(), output.OutboundEmail{To: "x@y.z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestVerifySignature(t *testing.T) {
	key := "signing-key"
	timestamp := "1693526400"
	token := "webhook-token"

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(timestamp + token))
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(key, timestamp, token, good))
	assert.False(t, VerifySignature(key, timestamp, token, "deadbeef"))
	assert.False(t, VerifySignature(key, "1693526401", token, good), "timestamp is part of the MAC")
	assert.True(t, VerifySignature("", timestamp, token, "anything"), "empty key disables verification")
}

func TestTokenFromRecipient(t *testing.T) {
	cases := []struct {
		recipient string
		want      string
	}{
		{"abc123xyz789@quotes.example.test", "abc123xyz789"},
		{"Quinn Replies <abc123xyz789@quotes.example.test>", "abc123xyz789"},
		{"ABC123XYZ789@QUOTES.EXAMPLE.TEST", "abc123xyz789"},
		{"info@example.test", ""},
		{"abc123xyz789@quotes.other.test", ""},
		{"has space@quotes.example.test", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TokenFromRecipient(tc.recipient, "example.test"), tc.recipient)
	}
}

func TestParseInbound(t *testing.T) {
	form := url.Values{}
	form.Set("sender", "Pat Plumber <pat@plumberco.test>")
	form.Set("recipient", "abc123xyz789@quotes.example.test")
	form.Set("subject", "Re: Quote request")
	form.Set("body-plain", "We can do it for $150.")
	form.Set("stripped-text", "We can do it for $150.")
	form.Set("attachment-count", "2")

	r := httptest.NewRequest(http.MethodPost, "/webhook/mailgun", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	email, err := ParseInbound(r, "example.test")
	require.NoError(t, err)

	assert.Equal(t, "Pat Plumber <pat@plumberco.test>", email.Sender)
	assert.Equal(t, "abc123xyz789", email.TrackingToken)
	assert.Equal(t, 2, email.AttachmentCount)
	assert.Equal(t, "We can do it for $150.", email.StrippedText)
}

func TestParseInboundHTMLOnlyFallsBackToText(t *testing.T) {
	form := url.Values{}
	form.Set("sender", "pat@plumberco.test")
	form.Set("recipient", "abc123xyz789@quotes.example.test")
	form.Set("body-html", "<html><head><style>p{}</style></head><body><p>We can do it for <b>$150</b>.</p><p>Thursday works.</p></body></html>")

	r := httptest.NewRequest(http.MethodPost, "/webhook/mailgun", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	email, err := ParseInbound(r, "example.test")
	require.NoError(t, err)

	assert.Equal(t, "We can do it for $150.\nThursday works.", email.BodyPlain)
}

func TestParseInboundEmptyForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/webhook/mailgun", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := ParseInbound(r, "example.test")
	assert.Error(t, err)
}

func TestHTMLToTextUnparseable(t *testing.T) {
	// html.Parse is extremely permissive; whatever happens the content
	// must survive.
	out := htmlToText("just plain words")
	assert.Contains(t, out, "just plain words")
}
