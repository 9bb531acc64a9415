package client

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

	"github.com/naveenspark/cbdemo/pkg/domain"
)

const (
	basePath = "/cbv1/mos"

	// ownObject addresses the signed-in object itself.
	ownObject = "0"

	accessTokenHeader = "accessToken"
)

// UpdateOptions control an asset update.
type UpdateOptions struct {
	// Defer asks the node to answer before the transaction is finalized.
	// The response then carries provisional remaining balances.
	Defer bool
	// Record is the free-text transaction record stored with the update.
	Record string
}

// Client talks to a single ledger node. It holds no session state: every
// authenticated call takes the access token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client for the node endpoint.
// A nil httpClient gets a 30 second timeout.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
	}
}

// Endpoint returns the node endpoint the client is pinned to.
func (c *Client) Endpoint() string { return c.baseURL }

// --- Sign in / sign out ---

// SignIn authenticates an object with its credentials.
func (c *Client) SignIn(ctx context.Context, clientKey, encHash, clientCertificate string) (*domain.TokenSet, error) {
	params := url.Values{}
	params.Set("clientKey", clientKey)
	params.Set("encHash", encHash)
	params.Set("clientCertificate", clientCertificate)

	var tokens domain.TokenSet
	if err := c.doRequest(ctx, http.MethodPost, basePath+"/signin?"+params.Encode(), "", nil, &tokens); err != nil {
		return nil, fmt.Errorf("client.SignIn: %w", err)
	}
	return &tokens, nil
}

// SignInWithRefreshToken obtains a fresh token set from a refresh token.
func (c *Client) SignInWithRefreshToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	params := url.Values{}
	params.Set("refreshToken", refreshToken)

	var tokens domain.TokenSet
	if err := c.doRequest(ctx, http.MethodPost, basePath+"/signin?"+params.Encode(), "", nil, &tokens); err != nil {
		return nil, fmt.Errorf("client.SignInWithRefreshToken: %w", err)
	}
	return &tokens, nil
}

// SignOut invalidates the access token on the node.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if err := c.doRequest(ctx, http.MethodPost, basePath+"/signout", accessToken, nil, nil); err != nil {
		return fmt.Errorf("client.SignOut: %w", err)
	}
	return nil
}

// --- Reads ---

// ReadFields returns the fields of the signed-in object.
func (c *Client) ReadFields(ctx context.Context, accessToken string) (*domain.Fields, error) {
	var f domain.Fields
	if err := c.get(ctx, basePath+"/"+ownObject, accessToken, &f); err != nil {
		return nil, fmt.Errorf("client.ReadFields: %w", err)
	}
	return &f, nil
}

// ReadAssets returns all assets of the signed-in object. It returns nil and
// no error when the object has no assets yet.
func (c *Client) ReadAssets(ctx context.Context, accessToken string, history bool) (*domain.AssetList, error) {
	var assets domain.AssetList
	err := c.get(ctx, basePath+"/"+ownObject+"/allAssets"+historyQuery(history), accessToken, &assets)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.ReadAssets: %w", err)
	}
	return &assets, nil
}

// ReadForeign reads a single field or asset of another object. It returns
// nil and no error when the field or asset is absent.
func (c *Client) ReadForeign(ctx context.Context, accessToken, identityKey, name string, history bool) (json.RawMessage, error) {
	var raw json.RawMessage
	path := basePath + "/" + url.PathEscape(identityKey) + "/" + assetPath(name) + historyQuery(history)
	err := c.get(ctx, path, accessToken, &raw)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.ReadForeign: %w", err)
	}
	return raw, nil
}

// ReadForeignField reads a string field of another object. ok is false when
// the field is absent.
func (c *Client) ReadForeignField(ctx context.Context, accessToken, identityKey, field string) (value string, ok bool, err error) {
	raw, err := c.ReadForeign(ctx, accessToken, identityKey, field, false)
	if err != nil || raw == nil {
		return "", false, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", false, fmt.Errorf("client.ReadForeignField: decode: %w", err)
	}
	v, ok := fields[field]
	if !ok {
		return "", false, nil
	}
	if err := json.Unmarshal(v, &value); err != nil {
		// Non-string fields are returned verbatim.
		return string(v), true, nil
	}
	return value, true, nil
}

// ReadForeignAsset reads a single asset of another object. It returns nil
// and no error when the asset is absent.
func (c *Client) ReadForeignAsset(ctx context.Context, accessToken, identityKey, asset string, history bool) (*domain.Asset, error) {
	raw, err := c.ReadForeign(ctx, accessToken, identityKey, asset, history)
	if err != nil || raw == nil {
		return nil, err
	}
	var list domain.AssetList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("client.ReadForeignAsset: decode: %w", err)
	}
	a, ok := list.Find(asset)
	if !ok {
		if len(list.Assets) == 0 {
			return nil, nil
		}
		a = &list.Assets[0]
	}
	return a, nil
}

// ReadDependents lists the sub-objects of identityKey. A missing list is
// returned as empty.
func (c *Client) ReadDependents(ctx context.Context, accessToken, identityKey string) ([]domain.Dependent, error) {
	var deps domain.DependentList
	err := c.get(ctx, basePath+"/"+url.PathEscape(identityKey)+"/submos", accessToken, &deps)
	if errors.Is(err, ErrNotFound) {
		return []domain.Dependent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.ReadDependents: %w", err)
	}
	if deps.Keys == nil {
		return []domain.Dependent{}, nil
	}
	return deps.Keys, nil
}

// --- Updates ---

// UpdateField sets a field of the signed-in object.
func (c *Client) UpdateField(ctx context.Context, accessToken, name, value string) error {
	body := map[string]string{name: value}
	if err := c.doRequest(ctx, http.MethodPut, basePath+"/"+ownObject, accessToken, body, nil); err != nil {
		return fmt.Errorf("client.UpdateField: %w", err)
	}
	return nil
}

// UpdateAsset burns one unit of an asset of the signed-in object.
func (c *Client) UpdateAsset(ctx context.Context, accessToken, asset string, opts UpdateOptions) (*domain.UpdateResult, error) {
	res, err := c.updateAsset(ctx, accessToken, ownObject, asset, opts)
	if err != nil {
		return nil, fmt.Errorf("client.UpdateAsset: %w", err)
	}
	return res, nil
}

// UpdateForeignAsset burns one unit of an asset of a dependent object, as a
// licensee does when provisioning an end user.
func (c *Client) UpdateForeignAsset(ctx context.Context, accessToken, identityKey, asset string, opts UpdateOptions) (*domain.UpdateResult, error) {
	res, err := c.updateAsset(ctx, accessToken, url.PathEscape(identityKey), asset, opts)
	if err != nil {
		return nil, fmt.Errorf("client.UpdateForeignAsset: %w", err)
	}
	return res, nil
}

func (c *Client) updateAsset(ctx context.Context, accessToken, object, asset string, opts UpdateOptions) (*domain.UpdateResult, error) {
	params := url.Values{}
	if opts.Defer {
		params.Set("deferTransactionCompletion", "true")
	}
	if opts.Record != "" {
		params.Set("transactionRecord", opts.Record)
	}
	path := basePath + "/" + object + "/" + assetPath(asset)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var res domain.UpdateResult
	if err := c.doRequest(ctx, http.MethodPut, path, accessToken, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// assetPath escapes an asset or field name for use as a path segment. The
// node expects the "#" namespace separator as %40.
func assetPath(name string) string {
	parts := strings.Split(name, "#")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "%40")
}

func historyQuery(history bool) string {
	if history {
		return "?history=true"
	}
	return ""
}

func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	switch {
	case body != nil:
		req.Header.Set("Content-Type", "application/json")
	case method == http.MethodPost:
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	if accessToken != "" {
		req.Header.Set(accessTokenHeader, accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	// Updates with deferred or synchronous completion may answer with an empty body.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, accessToken string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, accessToken, nil, out)
}
