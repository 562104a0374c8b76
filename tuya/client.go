// Package tuya implements a client for the Tuya "Smart Life" cloud API:
// credential acquisition and renewal, device discovery, and device control.
//
// Every call returns either a typed payload or an error. Protocol rejections
// (non-200 statuses, upstream codes other than SUCCESS, malformed success
// payloads) are reported as ErrRejected; transport and decode failures are
// returned wrapped. Callers that do not care about the distinction can treat
// any non-nil error as failure, which is the policy the rest of this module
// follows.
package tuya

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrRejected indicates the upstream explicitly rejected the request or
// returned a payload that does not satisfy the operation's success predicate.
var ErrRejected = errors.New("rejected by upstream")

const (
	defaultEndpoint = "https://px1.tuya%s.com/homeassistant"

	pathAuth    = "auth.do"
	pathRefresh = "access.do"
	pathSkill   = "skill"

	codeSuccess = "SUCCESS"

	namespaceDiscovery = "discovery"
	namespaceControl   = "control"
	nameDiscovery      = "Discovery"
)

// Action names and the attribute the control endpoint expects for them.
const (
	ActionTurnOnOff  = "turnOnOff"
	ActionBrightness = "brightnessSet"
	ActionColorTemp  = "colorTemperatureSet"
	AttributeValue   = "value"
)

// Client issues authenticated calls against the Smart Life cloud. It is
// stateless and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	endpoint   string
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint overrides the endpoint template. The template must contain a
// single %s verb that receives the region code, e.g.
// "http://127.0.0.1:9999/%s/homeassistant".
func WithEndpoint(template string) Option {
	return func(c *Client) { c.endpoint = template }
}

// WithNow sets the clock used to compute token expiries.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Client for the production endpoints.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		endpoint:   defaultEndpoint,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) url(region Region, path string) string {
	return fmt.Sprintf(c.endpoint, region) + "/" + path
}

// tokenResponse is the payload shape shared by auth.do and access.do.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login authenticates with the given credentials and returns a fresh Session.
// Success requires HTTP 200 plus both an access token and an expiry duration
// in the payload.
func (c *Client) Login(ctx context.Context, region Region, username, password string) (*Session, error) {
	form := url.Values{
		"userName":    {username},
		"password":    {password},
		"countryCode": {region.countryCode()},
		"bizType":     {"smart_life"},
		"from":        {"tuya"},
	}
	return c.tokenCall(ctx, region, pathAuth, form)
}

// RefreshToken exchanges a refresh token for a fresh Session. The rand field
// is an upstream protocol quirk: a fresh random value is required per call,
// with no documented semantics.
func (c *Client) RefreshToken(ctx context.Context, region Region, refreshToken string) (*Session, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"rand":          {uuid.NewString()},
	}
	return c.tokenCall(ctx, region, pathRefresh, form)
}

func (c *Client) tokenCall(ctx context.Context, region Region, path string, form url.Values) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(region, path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var payload tokenResponse
	if status != http.StatusOK || json.Unmarshal(body, &payload) != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrRejected)
	}
	if payload.AccessToken == "" || payload.ExpiresIn == 0 {
		return nil, fmt.Errorf("%s: incomplete token payload: %w", path, ErrRejected)
	}

	return &Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
		ExpiresAt:    c.now().Add(time.Duration(payload.ExpiresIn) * time.Second),
		Region:       region,
	}, nil
}

type skillHeader struct {
	Name           string `json:"name"`
	Namespace      string `json:"namespace"`
	PayloadVersion int    `json:"payloadVersion"`
}

type skillRequest struct {
	Header  skillHeader    `json:"header"`
	Payload map[string]any `json:"payload"`
}

type skillResponse struct {
	Header struct {
		Code string `json:"code"`
	} `json:"header"`
	Payload struct {
		Devices []wireDevice `json:"devices"`
	} `json:"payload"`
}

// ListDevices fetches the device list for the session. Success requires HTTP
// 200, an upstream SUCCESS code, and a non-null device list.
func (c *Client) ListDevices(ctx context.Context, region Region, accessToken string) ([]Device, error) {
	reqBody := skillRequest{
		Header: skillHeader{
			Name:           nameDiscovery,
			Namespace:      namespaceDiscovery,
			PayloadVersion: 1,
		},
		Payload: map[string]any{"accessToken": accessToken},
	}

	status, body, err := c.skillCall(ctx, region, reqBody)
	if err != nil {
		return nil, err
	}

	var payload skillResponse
	if status != http.StatusOK || json.Unmarshal(body, &payload) != nil {
		return nil, fmt.Errorf("discovery: %w", ErrRejected)
	}
	if payload.Header.Code != codeSuccess || payload.Payload.Devices == nil {
		return nil, fmt.Errorf("discovery: code %q: %w", payload.Header.Code, ErrRejected)
	}

	devices := make([]Device, 0, len(payload.Payload.Devices))
	for _, w := range payload.Payload.Devices {
		d, err := w.device()
		if err != nil {
			return nil, fmt.Errorf("discovery: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// SendAction issues a control command against a single device. Success
// requires HTTP 200 and an upstream SUCCESS code.
func (c *Client) SendAction(ctx context.Context, region Region, accessToken, deviceID, action, attribute string, value any) error {
	reqBody := skillRequest{
		Header: skillHeader{
			Name:           action,
			Namespace:      namespaceControl,
			PayloadVersion: 1,
		},
		Payload: map[string]any{
			"accessToken": accessToken,
			"devId":       deviceID,
			attribute:     value,
		},
	}

	status, body, err := c.skillCall(ctx, region, reqBody)
	if err != nil {
		return err
	}

	var payload skillResponse
	if status != http.StatusOK || json.Unmarshal(body, &payload) != nil {
		return fmt.Errorf("%s: %w", action, ErrRejected)
	}
	if payload.Header.Code != codeSuccess {
		return fmt.Errorf("%s: code %q: %w", action, payload.Header.Code, ErrRejected)
	}
	return nil
}

func (c *Client) skillCall(ctx context.Context, region Region, reqBody skillRequest) (int, []byte, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("encoding skill request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(region, pathSkill), strings.NewReader(string(data)))
	if err != nil {
		return 0, nil, fmt.Errorf("building skill request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response from %s: %w", req.URL.Path, err)
	}
	return resp.StatusCode, body, nil
}
