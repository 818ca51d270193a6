package client

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

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/api/http/common"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// genericPost is a helper to POST data to a given URL and unmarshal the response
func (c *Client) genericPost(ctx context.Context, addr *url.URL, in interface{}, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr.String(), bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// multipartPost sends an upload as a multipart form.
func (c *Client) multipartPost(ctx context.Context, addr *url.URL, up *structs.Upload, out interface{}) error {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	fields := map[string]string{
		common.FieldOwnerID:       up.OwnerID,
		common.FieldNotifyAddress: up.NotifyAddress,
		common.FieldFirstName:     up.FirstName,
		common.FieldLastName:      up.LastName,
		common.FieldTitle:         up.Title,
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		err := mw.WriteField(k, v)
		if err != nil {
			return err
		}
	}

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, common.FieldFile, up.Filename))
	h.Set("Content-Type", up.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(up.Data)
	if err != nil {
		return err
	}
	err = mw.Close()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr.String(), buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}

// genericGet is a helper to GET data from a given URL and unmarshal the response.
func (c *Client) genericGet(ctx context.Context, addr *url.URL, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 { // some error code, assume message is error message
		return &StatusError{Code: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	}

	return json.Unmarshal(body, out)
}

// StatusError is returned when the server answers with an error code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status code %d, returned %s", e.Code, e.Message)
}
