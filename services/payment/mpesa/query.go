package mpesa

import (
	"context"
	"fmt"
	"time"
)

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// STKQueryResponse reports the final state of a push payment. ResultCode "0"
// means the payer approved; any other code is a failure. While the payment is
// still awaiting the payer, the endpoint answers with an error code instead
// of a result.
type STKQueryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

// Resolved reports whether the provider has a final answer yet.
func (r *STKQueryResponse) Resolved() bool {
	return r.ResultCode != ""
}

// Success reports payer approval.
func (r *STKQueryResponse) Success() bool {
	return r.ResultCode == "0"
}

// QueryStatus asks the status endpoint for the outcome of an in-flight push.
func (c *Client) QueryStatus(ctx context.Context, checkoutRequestID string) (*STKQueryResponse, error) {
	timestamp := time.Now().Format(timestampLayout)

	payload := stkQueryRequest{
		BusinessShortCode: c.Shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var resp STKQueryResponse
	if err := c.postJSON(ctx, stkQueryPath, payload, &resp); err != nil {
		return nil, fmt.Errorf("stk status query failed: %w", err)
	}
	return &resp, nil
}

// CallbackPayload is the shape Daraja posts to the configured callback URL.
type CallbackPayload struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
		} `json:"stkCallback"`
	} `json:"Body"`
}
