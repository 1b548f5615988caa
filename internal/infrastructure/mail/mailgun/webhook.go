package mailgun

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"quinn-backend/internal/domain/entity"
)

// VerifySignature checks an inbound webhook's signature triple:
// signature == HMAC-SHA256(signingKey, timestamp+token), hex-encoded.
// An empty signingKey disables verification.
func VerifySignature(signingKey, timestamp, token, signature string) bool {
	if signingKey == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(timestamp + token))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// maxInboundBody caps the webhook form size (attachments included).
const maxInboundBody = 10 << 20

// ParseInbound reads Mailgun's inbound-route POST into an InboundEmail.
// replyDomain is the domain whose quotes. subdomain carries tracking
// tokens.
func ParseInbound(r *http.Request, replyDomain string) (*entity.InboundEmail, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxInboundBody)

	ct := r.Header.Get("Content-Type")
	var err error
	if strings.HasPrefix(ct, "multipart/form-data") {
		err = r.ParseMultipartForm(maxInboundBody)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, fmt.Errorf("parse inbound form: %w", err)
	}

	email := &entity.InboundEmail{
		Sender:       r.FormValue("sender"),
		Recipient:    r.FormValue("recipient"),
		Subject:      r.FormValue("subject"),
		BodyPlain:    r.FormValue("body-plain"),
		BodyHTML:     r.FormValue("body-html"),
		StrippedText: r.FormValue("stripped-text"),
		ReceivedAt:   time.Now().UTC(),
	}
	if email.Sender == "" && email.Recipient == "" {
		return nil, fmt.Errorf("inbound form carries no sender or recipient")
	}

	if n, err := strconv.Atoi(r.FormValue("attachment-count")); err == nil {
		email.AttachmentCount = n
	}

	// Plain text can be absent on HTML-only mail.
	if email.StrippedText == "" && email.BodyPlain == "" && email.BodyHTML != "" {
		email.BodyPlain = htmlToText(email.BodyHTML)
	}

	email.TrackingToken = TokenFromRecipient(email.Recipient, replyDomain)
	return email, nil
}

// SignatureFields pulls the verification triple out of the same form.
func SignatureFields(r *http.Request) (timestamp, token, signature string) {
	return r.FormValue("timestamp"), r.FormValue("token"), r.FormValue("signature")
}

var tokenPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// TokenFromRecipient extracts the tracking token from a recipient
// matching {token}@quotes.<domain>. Any other recipient yields "".
func TokenFromRecipient(recipient, replyDomain string) string {
	if recipient == "" || replyDomain == "" {
		return ""
	}
	addr := recipient
	if parsed, err := mail.ParseAddress(recipient); err == nil {
		addr = parsed.Address
	}

	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return ""
	}
	local := addr[:at]
	domain := strings.ToLower(addr[at+1:])

	if domain != "quotes."+strings.ToLower(replyDomain) {
		return ""
	}
	local = strings.ToLower(local)
	if !tokenPattern.MatchString(local) {
		return ""
	}
	return local
}
