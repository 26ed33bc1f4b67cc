package httptransport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/surfsync/surfsync/internal/rpc"
	"github.com/surfsync/surfsync/internal/surfproto"
)

// Client is an rpc.Client backed by net/http against a Server.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

var _ rpc.Client = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %v", rpc.ErrTransport, err)
		}
		reqBody = bytes.NewBuffer(buf)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", rpc.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", rpc.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: server returned status %d", rpc.ErrTransport, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", rpc.ErrTransport, err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/ping", nil, nil)
}

func (c *Client) GetBlock(ctx context.Context, hash string) ([]byte, error) {
	var resp getBlockResponse
	if err := c.do(ctx, http.MethodPost, "/block/get", getBlockRequest{Hash: hash}, &resp); err != nil {
		return nil, err
	}
	if !resp.Found {
		return []byte{}, nil
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding block data: %v", rpc.ErrTransport, err)
	}
	return data, nil
}

func (c *Client) StoreBlock(ctx context.Context, hash string, data []byte) error {
	req := storeBlockRequest{Hash: hash, Data: base64.StdEncoding.EncodeToString(data)}
	return c.do(ctx, http.MethodPost, "/block/store", req, nil)
}

func (c *Client) GetFileInfoMap(ctx context.Context) (surfproto.FileInfoMap, error) {
	var out surfproto.FileInfoMap
	if err := c.do(ctx, http.MethodGet, "/fileinfo", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = surfproto.FileInfoMap{}
	}
	return out, nil
}

func (c *Client) UpdateFile(ctx context.Context, filename string, fi surfproto.FileInfo) (bool, error) {
	req := updateFileRequest{Filename: filename, Version: fi.Version, Hashlist: fi.Hashlist}
	var resp updateFileResponse
	if err := c.do(ctx, http.MethodPost, "/fileinfo/update", req, &resp); err != nil {
		return false, err
	}
	return resp.Accepted, nil
}
