package httpapi

import (
	"encoding/base64"
	"net/http"

	"quinn-backend/internal/application/port/input"
	"quinn-backend/internal/domain/entity"
)

type fillFormRequest struct {
	WebsiteURL     string `json:"website_url"`
	BusinessID     string `json:"business_id"`
	BusinessName   string `json:"business_name"`
	ServiceRequest struct {
		Name        string `json:"name"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		Address     string `json:"address"`
		City        string `json:"city"`
		ZipCode     string `json:"zip_code"`
		Description string `json:"description"`
	} `json:"service_request"`
}

type fillFormResponse struct {
	Success          bool             `json:"success"`
	BusinessID       string           `json:"businessId,omitempty"`
	Message          string           `json:"message"`
	FormURL          string           `json:"formUrl,omitempty"`
	Trace            entity.FormTrace `json:"trace"`
	ScreenshotBase64 string           `json:"screenshotBase64,omitempty"`
}

func (h *Handlers) handleFillFormConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.capabilities)
}

// handleFillForm runs the whole decision loop inside the request.
// Operational failures stay in-band: the caller always gets a JSON
// verdict, not a 500.
func (h *Handlers) handleFillForm(w http.ResponseWriter, r *http.Request) {
	var body fillFormRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if body.WebsiteURL == "" {
		writeError(w, http.StatusBadRequest, "website_url is required")
		return
	}
	sr := body.ServiceRequest
	if sr.Name == "" && sr.Email == "" && sr.Phone == "" {
		writeError(w, http.StatusBadRequest, "service_request needs at least a name, email, or phone")
		return
	}

	customer := (&entity.ServiceRequest{
		CallerName:    sr.Name,
		CallerEmail:   sr.Email,
		CallerPhone:   sr.Phone,
		CallerAddress: sr.Address,
		ZipCode:       sr.ZipCode,
		Description:   sr.Description,
	}).Customer()
	customer.City = sr.City

	filler, release, err := h.newFiller(r.Context())
	if err != nil {
		h.logger.Error("Browser session unavailable", "error", err.Error())
		writeJSON(w, http.StatusOK, fillFormResponse{
			BusinessID: body.BusinessID,
			Message:    "browser session unavailable: " + err.Error(),
		})
		return
	}
	defer release()

	result, err := filler.Fill(r.Context(), input.FillRequest{
		WebsiteURL: body.WebsiteURL,
		BusinessID: body.BusinessID,
		Customer:   customer,
	})
	if err != nil {
		h.recordFormFill(r, body.BusinessID, "failed", "")
		writeJSON(w, http.StatusOK, fillFormResponse{
			BusinessID: body.BusinessID,
			Message:    err.Error(),
		})
		return
	}

	status := "failed"
	if result.Success {
		status = "completed"
	}
	h.recordFormFill(r, body.BusinessID, status, result.FormURL)

	resp := fillFormResponse{
		Success:    result.Success,
		BusinessID: body.BusinessID,
		Message:    result.Message,
		FormURL:    result.FormURL,
		Trace:      result.Trace,
	}
	if result.Screenshot != nil {
		resp.ScreenshotBase64 = base64.StdEncoding.EncodeToString(result.Screenshot.Data)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) recordFormFill(r *http.Request, businessID, status, formURL string) {
	if businessID == "" || h.store == nil {
		return
	}
	if err := h.store.UpdateBusinessFormFill(r.Context(), businessID, status, formURL); err != nil {
		h.logger.Warn("Form-fill status not recorded", "business_id", businessID, "error", err.Error())
	}
}
