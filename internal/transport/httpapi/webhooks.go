package httpapi

import (
	"net/http"
	"time"

	"quinn-backend/internal/infrastructure/mail/mailgun"
	"quinn-backend/internal/usecase/intake"
)

// handleMailgunWebhook accepts a contractor reply. Delivery contract:
// 200 for everything Mailgun should not retry; 401 only for a bad
// signature, 400 only for an unparseable form.
func (h *Handlers) handleMailgunWebhook(w http.ResponseWriter, r *http.Request) {
	email, err := mailgun.ParseInbound(r, h.replyDomain)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	timestamp, token, signature := mailgun.SignatureFields(r)
	if !mailgun.VerifySignature(h.signingKey, timestamp, token, signature) {
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	if err := h.inbound.Process(r.Context(), email); err != nil {
		// Mailgun retries on non-2xx; a storage hiccup should retry,
		// anything else should not. The processor only errors on
		// storage failures.
		h.logger.Error("Inbound email not stored", "error", err.Error())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// intakeWebhookRequest is the end-of-call report posted by the voice
// platform.
type intakeWebhookRequest struct {
	Message struct {
		Type string `json:"type"`
		Call struct {
			ID       string `json:"id"`
			Customer struct {
				Number string `json:"number"`
			} `json:"customer"`
		} `json:"call"`
		StartedAt  time.Time `json:"startedAt"`
		EndedAt    time.Time `json:"endedAt"`
		Transcript string    `json:"transcript"`
		Summary    string    `json:"summary"`
		Analysis   struct {
			StructuredData map[string]any `json:"structuredData"`
		} `json:"analysis"`
	} `json:"message"`
}

func (h *Handlers) handleIntakeWebhook(w http.ResponseWriter, r *http.Request) {
	var body intakeWebhookRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	msg := body.Message
	if msg.Type != "end-of-call-report" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	structured := make(map[string]string, len(msg.Analysis.StructuredData))
	for k, v := range msg.Analysis.StructuredData {
		if s, ok := v.(string); ok {
			structured[k] = s
		}
	}

	req, err := h.intake.Handle(r.Context(), intake.CallReport{
		CallID:      msg.Call.ID,
		CallerPhone: msg.Call.Customer.Number,
		Transcript:  msg.Transcript,
		Summary:     msg.Summary,
		StartedAt:   msg.StartedAt,
		EndedAt:     msg.EndedAt,
		Structured:  structured,
	})
	if err != nil {
		h.logger.Error("Intake failed", "call_id", msg.Call.ID, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "intake failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":         "created",
		"request_id":     req.ID,
		"tracking_token": req.TrackingToken,
	})
}
