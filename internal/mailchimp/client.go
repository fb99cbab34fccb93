package mailchimp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6/httpclient"
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	APIKey  string
	Server  string // data center prefix, e.g. us13
	BaseURL string // overrides https://<server>.api.mailchimp.com/3.0 when set
	Timeout time.Duration
}

// Client is a thin pass-through to the Mailchimp Marketing API v3.
// It never retries; the first failure is returned to the caller.
type Client struct {
	http    *httpclient.Client
	apiKey  string
	baseURL string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mailchimp: api key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		if cfg.Server == "" {
			return nil, errors.New("mailchimp: server prefix is required")
		}
		base = fmt.Sprintf("https://%s.api.mailchimp.com/3.0", cfg.Server)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		http: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetryCount(0),
		),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

// GetAllLists returns every audience on the account with its member count.
func (c *Client) GetAllLists(ctx context.Context) ([]List, error) {
	var resp listsResponse
	if err := c.do(ctx, http.MethodGet, "/lists?count=1000", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Lists == nil {
		resp.Lists = []List{}
	}
	return resp.Lists, nil
}

func (c *Client) AddListMember(ctx context.Context, listID string, m MemberRequest) (*Member, error) {
	var member Member
	if err := c.do(ctx, http.MethodPost, "/lists/"+url.PathEscape(listID)+"/members", m, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) CreateSegment(ctx context.Context, listID string, s SegmentRequest) (*Segment, error) {
	if s.Options.Match == "" {
		s.Options.Match = MatchAll
	}
	if s.Options.Conditions == nil {
		s.Options.Conditions = []SegmentCondition{}
	}
	var seg Segment
	if err := c.do(ctx, http.MethodPost, "/lists/"+url.PathEscape(listID)+"/segments", s, &seg); err != nil {
		return nil, err
	}
	return &seg, nil
}

func (c *Client) AddSegmentMember(ctx context.Context, listID, segmentID, email string) (*Member, error) {
	path := fmt.Sprintf("/lists/%s/segments/%s/members", url.PathEscape(listID), url.PathEscape(segmentID))
	var member Member
	if err := c.do(ctx, http.MethodPost, path, segmentMemberRequest{EmailAddress: email}, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) CreateCampaign(ctx context.Context, req CampaignRequest) (*Campaign, error) {
	var campaign Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns", req, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (c *Client) SetCampaignContent(ctx context.Context, campaignID, html string) (*CampaignContent, error) {
	var content CampaignContent
	if err := c.do(ctx, http.MethodPut, "/campaigns/"+url.PathEscape(campaignID)+"/content", contentRequest{HTML: html}, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (c *Client) SendCampaign(ctx context.Context, campaignID string) error {
	return c.do(ctx, http.MethodPost, "/campaigns/"+url.PathEscape(campaignID)+"/actions/send", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("mailchimp: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("mailchimp: build request: %w", err)
	}
	req.SetBasicAuth("anystring", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// heimdall returns both a response and an error for 5xx; the response wins.
	resp, err := c.http.Do(req)
	if resp == nil {
		if err == nil {
			err = errors.New("empty response")
		}
		return fmt.Errorf("mailchimp: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mailchimp: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		if len(respBody) > 0 {
			json.Unmarshal(respBody, apiErr)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("mailchimp: decode response: %w", err)
		}
	}
	return nil
}
