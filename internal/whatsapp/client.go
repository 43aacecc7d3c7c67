// Package whatsapp talks to the external WhatsApp gateway process and
// tracks its connection state.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"wifibilling/internal/common"
)

// Gateway is the message delivery interface. All operations degrade to
// ErrUpstreamUnavailable when the gateway process is unreachable or not
// paired with a device.
type Gateway interface {
	SendMessage(ctx context.Context, phone, message string) error
	SendDocument(ctx context.Context, phone, caption, filename string, document []byte) error
	Status(ctx context.Context) (GatewayStatus, error)
	PairingCode(ctx context.Context) (string, error)
	Reconnect(ctx context.Context) error
	Logout(ctx context.Context) error
}

// GatewayStatus mirrors the gateway's self-reported connection state.
type GatewayStatus struct {
	State     string `json:"state"`
	Connected bool   `json:"connected"`
	Phone     string `json:"phone,omitempty"`
}

const (
	StateDisconnected = "disconnected"
	StateQRReady      = "qr_ready"
	StateConnected    = "connected"
	StateLoggedOut    = "logged_out"
)

// Client calls the gateway over HTTP. Message and document sends use the
// long timeout, status polls the short one.
type Client struct {
	baseURL       string
	http          *http.Client
	statusTimeout time.Duration
}

func NewClient(baseURL string, sendTimeout, statusTimeout time.Duration) *Client {
	return &Client{
		baseURL:       baseURL,
		http:          &http.Client{Timeout: sendTimeout},
		statusTimeout: statusTimeout,
	}
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type gatewayResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type qrResponse struct {
	QR string `json:"qr"`
}

func (c *Client) SendMessage(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(sendRequest{Phone: common.NormalizePhone(phone), Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send-message", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) SendDocument(ctx context.Context, phone, caption, filename string, document []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("phone", common.NormalizePhone(phone)); err != nil {
		return err
	}
	if err := w.WriteField("caption", caption); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(document); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send-document", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req)
}

func (c *Client) Status(ctx context.Context) (GatewayStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return GatewayStatus{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return GatewayStatus{State: StateDisconnected},
			common.UpstreamErrorf("whatsapp gateway unreachable: %v", err)
	}
	defer resp.Body.Close()

	var status GatewayStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return GatewayStatus{}, common.UpstreamErrorf("whatsapp gateway returned invalid status: %v", err)
	}
	return status, nil
}

// PairingCode fetches the current QR payload for linking a device. The
// gateway only exposes it while in the qr_ready state.
func (c *Client) PairingCode(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/qr", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", common.UpstreamErrorf("whatsapp gateway unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", common.NotFoundErrorf("no pairing code available")
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.upstreamError(resp)
	}

	var out qrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", common.UpstreamErrorf("whatsapp gateway returned invalid response: %v", err)
	}
	return out.QR, nil
}

func (c *Client) Reconnect(ctx context.Context) error {
	return c.post(ctx, "/reconnect")
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/logout")
}

func (c *Client) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return common.UpstreamErrorf("whatsapp gateway unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.upstreamError(resp)
	}
	return nil
}

func (c *Client) upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var out gatewayResponse
	if err := json.Unmarshal(body, &out); err == nil && out.Error != "" {
		return common.UpstreamErrorf("whatsapp gateway: %s", out.Error)
	}
	return common.UpstreamErrorf("whatsapp gateway returned %s", fmt.Sprint(resp.StatusCode))
}
