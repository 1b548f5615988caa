package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL:    srv.URL,
		AccountSID: "AC000",
		AuthToken:  "token-secret",
		FromPhone:  "+16045550000",
	})

	sid, err := c.Send(context.Background(), "+16045551234", "Your plumber replied")
	require.NoError(t, err)

	assert.Equal(t, "SM123", sid)
	assert.Equal(t, "/2010-04-01/Accounts/AC000/Messages.json", gotPath)
	assert.Equal(t, "AC000:token-secret", gotAuth)
	assert.Equal(t, "+16045551234", gotForm.Get("To"))
	assert.Equal(t, "+16045550000", gotForm.Get("From"))
	assert.Equal(t, "Your plumber replied", gotForm.Get("Body"))
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, AccountSID: "AC000", AuthToken: "t", FromPhone: "+1"})

	_, err := c.Send(context.Background(), "bogus", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid 'To' Phone Number")
}
