package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// API is the REST side of the client: conversation fetch, send, upload, and
// channel authorization. Every call carries the session token; failures come
// back as the server's {"success":false,"message":...} envelope.
type API struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type SendInput struct {
	RecipientID string              `json:"recipientId"`
	Content     string              `json:"content"`
	Attachments []Attachment `json:"attachments"`
}

// FetchMessages returns the full ordered backlog for the conversation with
// the peer. Safe to call repeatedly.
func (a *API) FetchMessages(ctx context.Context, peerID string) ([]Message, error) {
	var out struct {
		envelope
		Messages []Message `json:"messages"`
	}
	endpoint := a.baseURL + "/messages?userId=" + url.QueryEscape(peerID)
	if err := a.do(ctx, http.MethodGet, endpoint, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (a *API) SendMessage(ctx context.Context, input SendInput) (*Message, error) {
	if input.Attachments == nil {
		input.Attachments = []Attachment{}
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	var out struct {
		envelope
		Message *Message `json:"message"`
	}
	if err := a.do(ctx, http.MethodPost, a.baseURL+"/messages", "application/json", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return out.Message, nil
}

// Upload posts one file as multipart form data and returns the attachment
// carrying its durable URL.
func (a *API) Upload(ctx context.Context, name, fileType string, content io.Reader) (Attachment, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", fileType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return Attachment{}, err
	}
	size, err := io.Copy(part, content)
	if err != nil {
		return Attachment{}, err
	}
	if err := writer.Close(); err != nil {
		return Attachment{}, err
	}

	var out struct {
		envelope
		URL  string `json:"url"`
		Size int64  `json:"size"`
	}
	if err := a.do(ctx, http.MethodPost, a.baseURL+"/upload", writer.FormDataContentType(), &buf, &out); err != nil {
		return Attachment{}, err
	}

	if out.Size == 0 {
		out.Size = size
	}
	return Attachment{Name: name, Type: fileType, Size: out.Size, URL: out.URL}, nil
}

// AuthorizeChannel requests a signed subscription grant for this socket.
func (a *API) AuthorizeChannel(ctx context.Context, socketID, channel string) (string, error) {
	form := url.Values{}
	form.Set("socket_id", socketID)
	form.Set("channel_name", channel)

	var out struct {
		envelope
		Auth string `json:"auth"`
	}
	err := a.do(ctx, http.MethodPost, a.baseURL+"/pusher/auth",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &out)
	if err != nil {
		return "", err
	}
	return out.Auth, nil
}

type envelope struct {
	Success bool `json:"success"`
}

func (a *API) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var failure struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &failure) == nil && failure.Message != "" {
			return fmt.Errorf("%s %s: %s", method, endpoint, failure.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, endpoint, resp.StatusCode)
	}

	return json.Unmarshal(raw, out)
}
