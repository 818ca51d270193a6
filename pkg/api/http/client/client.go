package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api/http/common"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// Client talks to a pipeline API server. It implements api.API.
type Client struct {
	url  *url.URL
	http *http.Client
}

func New(address string) (*Client, error) {
	u, err := url.Parse(address)
	return &Client{url: u, http: &http.Client{}}, err
}

func (c *Client) Upload(ctx context.Context, up *structs.Upload) (*structs.UploadResponse, error) {
	addr := c.addr(common.API_UPLOADS)
	var out structs.UploadResponse
	return &out, c.multipartPost(ctx, addr, up, &out)
}

func (c *Client) Redrive(ctx context.Context, req *structs.RedriveRequest) (*structs.RedriveSummary, error) {
	addr := c.addr(common.API_REDRIVE)
	if req == nil {
		req = &structs.RedriveRequest{}
	}
	var out structs.RedriveSummary
	return &out, c.genericPost(ctx, addr, req, &out)
}

func (c *Client) Depths(ctx context.Context) (*structs.QueueDepths, error) {
	addr := c.addr(common.API_QUEUES)
	var out structs.QueueDepths
	return &out, c.genericGet(ctx, addr, &out)
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
