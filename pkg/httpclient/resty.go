package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

type RestyClient struct {
	client *resty.Client
}

func New(baseURL string, timeout time.Duration, bearerToken string) HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if bearerToken != "" {
		client.SetAuthToken(bearerToken)
	}

	return &RestyClient{client: client}
}

func toBaseResponse(resp *resty.Response) *BaseResponse {
	if resp == nil {
		return &BaseResponse{}
	}
	return &BaseResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
	}
}

func (rc *RestyClient) request(ctx context.Context, headers map[string]string, result interface{}) *resty.Request {
	req := rc.client.R().SetContext(ctx)
	if result != nil {
		req.SetResult(result)
	}
	if headers != nil {
		req.SetHeaders(headers)
	}
	return req
}

// GET request with optional query params
func (rc *RestyClient) Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error) {
	req := rc.request(ctx, headers, result)
	if queryParams != nil {
		req.SetQueryParams(queryParams)
	}

	resp, err := req.Get(endpoint)
	return toBaseResponse(resp), err
}

// POST request with body
func (rc *RestyClient) Post(ctx context.Context, endpoint string, body interface{}, headers map[string]string, result interface{}) (*BaseResponse, error) {
	resp, err := rc.request(ctx, headers, result).SetBody(body).Post(endpoint)
	return toBaseResponse(resp), err
}

// PUT request
func (rc *RestyClient) Put(ctx context.Context, endpoint string, body interface{}, headers map[string]string, result interface{}) (*BaseResponse, error) {
	resp, err := rc.request(ctx, headers, result).SetBody(body).Put(endpoint)
	return toBaseResponse(resp), err
}

// DELETE request
func (rc *RestyClient) Delete(ctx context.Context, endpoint string, headers map[string]string, result interface{}) (*BaseResponse, error) {
	resp, err := rc.request(ctx, headers, result).Delete(endpoint)
	return toBaseResponse(resp), err
}

// Download streams the response body of url into outputPath.
func (rc *RestyClient) Download(ctx context.Context, url string, outputPath string) (*BaseResponse, error) {
	resp, err := rc.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/octet-stream").
		SetOutput(outputPath).
		Get(url)
	if resp == nil {
		return &BaseResponse{}, err
	}
	return &BaseResponse{StatusCode: resp.StatusCode(), Headers: resp.Header()}, err
}

func (rc *RestyClient) SetHeader(key, value string) {
	rc.client.SetHeader(key, value)
}

func (rc *RestyClient) SetAuthToken(token string) {
	rc.client.SetAuthToken(token)
}

// Close drops idle keep-alive connections held by the transport.
func (rc *RestyClient) Close() {
	rc.client.GetClient().CloseIdleConnections()
}
