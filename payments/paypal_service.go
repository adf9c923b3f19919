// Package payments talks to PayPal's Checkout Orders API for the one charge
// this platform makes: the flat fee an employer pays to publish an
// apprenticeship listing.
package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	config "github.com/apprenticeapex/backend/configs"
)

// OrderCompleted is the status a captured order must report before the
// listing is published.
const OrderCompleted = "COMPLETED"

// Order is the slice of PayPal's order resource the listing-fee flow keeps:
// the provider id stored on the payment row and the status gate for capture.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount orderAmount `json:"amount"`
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

func oauthToken() (string, error) {
	req, err := http.NewRequest(http.MethodPost,
		config.Config("PAYPAL_API_BASE_URL")+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(config.Config("PAYPAL_CLIENT_ID"), config.Config("PAYPAL_CLIENT_SECRET"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token request failed: %s", resp.Status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.AccessToken, nil
}

// checkout posts to one of the /v2/checkout/orders endpoints, which all
// answer 201 with an order resource.
func checkout(path string, payload io.Reader) (*Order, error) {
	token, err := oauthToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, config.Config("PAYPAL_API_BASE_URL")+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paypal checkout call %s failed: %s", path, string(detail))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder opens a CAPTURE-intent order for the listing fee. The returned
// order id is handed to the employer's PayPal button and stored against the
// pending payment row.
func CreateOrder(amount float64, currency string) (*Order, error) {
	body, err := json.Marshal(orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount: orderAmount{
				CurrencyCode: currency,
				Value:        fmt.Sprintf("%.2f", amount),
			},
		}},
	})
	if err != nil {
		return nil, err
	}
	return checkout("/v2/checkout/orders", bytes.NewReader(body))
}

// CaptureOrder settles an approved order. Callers must check the returned
// status against OrderCompleted before treating the fee as paid.
func CaptureOrder(orderID string) (*Order, error) {
	return checkout(fmt.Sprintf("/v2/checkout/orders/%s/capture", orderID), nil)
}
