package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elfshop/storebot/internal/shop"
)

// APIClient talks to the chat gateway over HTTP. The gateway owns delivery;
// we only hand messages over.
type APIClient struct {
	Base string
	HC   *http.Client
}

func NewAPIClient(base string) *APIClient {
	return &APIClient{
		Base: base,
		HC:   &http.Client{Timeout: 5 * time.Second},
	}
}

type sendTextReq struct {
	Identity string `json:"identity"`
	Text     string `json:"text"`
}

type sendPhotoReq struct {
	Identity string         `json:"identity"`
	ImageRef string         `json:"image_ref"`
	Caption  string         `json:"caption"`
	Actions  []InlineAction `json:"actions,omitempty"`
}

type sendPhotoResp struct {
	PromptRef string `json:"prompt_ref"`
}

type editPromptReq struct {
	PromptRef string `json:"prompt_ref"`
}

func (c *APIClient) SendText(ctx context.Context, identity, text string) error {
	err := c.post(ctx, "/send", sendTextReq{Identity: identity, Text: text}, nil)
	if err != nil {
		return &shop.DeliveryError{Identity: identity, Err: err}
	}
	return nil
}

func (c *APIClient) SendPhotoPrompt(ctx context.Context, identity, imageRef, caption string, actions []InlineAction) (string, error) {
	var resp sendPhotoResp
	err := c.post(ctx, "/sendPhoto", sendPhotoReq{
		Identity: identity,
		ImageRef: imageRef,
		Caption:  caption,
		Actions:  actions,
	}, &resp)
	if err != nil {
		return "", &shop.DeliveryError{Identity: identity, Err: err}
	}
	return resp.PromptRef, nil
}

func (c *APIClient) DisableActions(ctx context.Context, promptRef string) error {
	err := c.post(ctx, "/editPrompt", editPromptReq{PromptRef: promptRef}, nil)
	if err != nil {
		return &shop.DeliveryError{Err: err}
	}
	return nil
}

func (c *APIClient) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("chat gateway %s: status %d", path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
