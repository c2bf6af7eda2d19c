package mpesa

import (
	"context"
	"fmt"
	"math"
	"time"
)

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPushResponse is the provider's acknowledgement of a push request.
// CheckoutRequestID is the handle for the in-flight, not-yet-resolved payment.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorMessage        string `json:"errorMessage"`
}

// STKPush prompts the payer's phone to approve the payment. The phone number
// must already be normalized to the 254... form.
func (c *Client) STKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (*STKPushResponse, error) {
	timestamp := time.Now().Format(timestampLayout)

	payload := stkPushRequest{
		BusinessShortCode: c.Shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int64(math.Ceil(amount)),
		PartyA:            phone,
		PartyB:            c.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}

	var resp STKPushResponse
	if err := c.postJSON(ctx, stkPushPath, payload, &resp); err != nil {
		return nil, fmt.Errorf("stk push failed: %w", err)
	}
	if resp.ResponseCode != "0" {
		msg := resp.ResponseDescription
		if msg == "" {
			msg = resp.ErrorMessage
		}
		return nil, fmt.Errorf("stk push rejected: %s", msg)
	}
	if resp.CheckoutRequestID == "" {
		return nil, fmt.Errorf("stk push response missing CheckoutRequestID")
	}
	return &resp, nil
}
