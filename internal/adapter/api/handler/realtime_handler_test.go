package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamline/internal/infrastructure/realtime"
)

func newRealtimeHandlerForTest() (*RealtimeHandler, *realtime.Authorizer) {
	authorizer := realtime.NewAuthorizer("test-key", "test-secret")
	return NewRealtimeHandler(nil, authorizer, nil), authorizer
}

func authRequest(uid, socketID, channel string) (echo.Context, *httptest.ResponseRecorder) {
	form := url.Values{}
	if socketID != "" {
		form.Set("socket_id", socketID)
	}
	if channel != "" {
		form.Set("channel_name", channel)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/pusher/auth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != "" {
		c.Set("uid", uid)
	}
	return c, rec
}

func TestAuthorizeChannelGrantsParticipant(t *testing.T) {
	h, authorizer := newRealtimeHandlerForTest()

	c, rec := authRequest("u1", "socket-1", "private-chat-u1-u2")
	require.NoError(t, h.AuthorizeChannel(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var grant struct {
		Auth string `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grant))
	assert.True(t, authorizer.Verify("socket-1", "private-chat-u1-u2", grant.Auth))
}

func TestAuthorizeChannelRejectsThirdParty(t *testing.T) {
	h, _ := newRealtimeHandlerForTest()

	c, rec := authRequest("intruder", "socket-1", "private-chat-u1-u2")
	require.NoError(t, h.AuthorizeChannel(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestAuthorizeChannelRequiresAuthentication(t *testing.T) {
	h, _ := newRealtimeHandlerForTest()

	c, rec := authRequest("", "socket-1", "private-chat-u1-u2")
	require.NoError(t, h.AuthorizeChannel(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizeChannelRequiresFormFields(t *testing.T) {
	h, _ := newRealtimeHandlerForTest()

	cases := []struct {
		name     string
		socketID string
		channel  string
	}{
		{"missing socket id", "", "private-chat-u1-u2"},
		{"missing channel", "socket-1", ""},
		{"malformed channel", "socket-1", "presence-lobby"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := authRequest("u1", tc.socketID, tc.channel)
			require.NoError(t, h.AuthorizeChannel(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
