// Package mercadopago implements the payment gateway against the MercadoPago
// REST API using bearer-token authentication.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"childcare-booking/internal/pkg/config"
	"childcare-booking/internal/pkg/errs"
	"childcare-booking/internal/usecase"
)

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type paymentResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
	TransactionAmount float64     `json:"transaction_amount"`
	Metadata          struct {
		ReservationID string    `json:"reservation_id"`
		Fecha         string    `json:"fecha"`
		Hora          string    `json:"hora"`
		ChildrenHours []float64 `json:"children_hours"`
	} `json:"metadata"`
}

// Metadata keys arrive back from the provider lower-cased; hora keeps the
// "HH:00" shape it was sent with. The slot part is only trusted when all
// three fields decode, so reconciliation never consumes a half-read slot.
func slotMetadataFrom(body paymentResponse) *usecase.SlotMetadata {
	md := body.Metadata
	meta := &usecase.SlotMetadata{ReservationID: md.ReservationID}

	if md.Fecha != "" && len(md.ChildrenHours) > 0 {
		var hour int
		if _, err := fmt.Sscanf(md.Hora, "%d:", &hour); err == nil {
			meta.Date = md.Fecha
			meta.Hour = hour
			for _, h := range md.ChildrenHours {
				meta.ChildrenHours = append(meta.ChildrenHours, int(h))
			}
		}
	}

	if meta.ReservationID == "" && meta.Date == "" {
		return nil
	}
	return meta
}

func (c *Client) Payment(ctx context.Context, id string) (*usecase.ProviderPayment, error) {
	raw, err := c.get(ctx, "/v1/payments/"+id)
	if err != nil {
		return nil, err
	}

	var body paymentResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errs.Wrap(err, "failed to decode payment response")
	}

	return &usecase.ProviderPayment{
		ID:                body.ID.String(),
		Status:            body.Status,
		ExternalReference: body.ExternalReference,
		Amount:            roundAmount(body.TransactionAmount),
		Metadata:          slotMetadataFrom(body),
		Raw:               raw,
	}, nil
}

type orderResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
	PaidAmount        float64     `json:"paid_amount"`
	Payments          []struct {
		ID                json.Number `json:"id"`
		Status            string      `json:"status"`
		TransactionAmount float64     `json:"transaction_amount"`
	} `json:"payments"`
}

func (c *Client) MerchantOrder(ctx context.Context, id string) (*usecase.ProviderOrder, error) {
	raw, err := c.get(ctx, "/merchant_orders/"+id)
	if err != nil {
		return nil, err
	}

	var body orderResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errs.Wrap(err, "failed to decode merchant order response")
	}

	order := &usecase.ProviderOrder{
		ID:                body.ID.String(),
		Status:            body.Status,
		ExternalReference: body.ExternalReference,
		PaidAmount:        roundAmount(body.PaidAmount),
		Raw:               raw,
	}
	for _, p := range body.Payments {
		order.Payments = append(order.Payments, usecase.OrderPayment{
			ID:     p.ID.String(),
			Status: p.Status,
			Amount: roundAmount(p.TransactionAmount),
		})
	}
	return order, nil
}

type preferenceRequestBody struct {
	ExternalReference string           `json:"external_reference"`
	Items             []preferenceItem `json:"items"`
	Payer             *preferencePayer `json:"payer,omitempty"`
	Metadata          map[string]any   `json:"metadata,omitempty"`
	BackURLs          *backURLs        `json:"back_urls,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	StatementDesc     string           `json:"statement_descriptor,omitempty"`
	BinaryMode        bool             `json:"binary_mode"`
	AutoReturn        string           `json:"auto_return,omitempty"`
}

type preferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferencePayer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type preferenceResponseBody struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

func (c *Client) CreatePreference(ctx context.Context, req usecase.PreferenceRequest) (*usecase.PreferenceResult, error) {
	body := preferenceRequestBody{
		ExternalReference: req.ExternalReference,
		Metadata:          req.Metadata,
		NotificationURL:   req.NotificationURL,
		StatementDesc:     req.StatementDescriptor,
		BinaryMode:        req.BinaryMode,
		AutoReturn:        req.AutoReturn,
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, preferenceItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  float64(item.UnitPrice),
			CurrencyID: "ARS",
		})
	}
	if req.PayerEmail != "" || req.PayerName != "" {
		body.Payer = &preferencePayer{Email: req.PayerEmail, Name: req.PayerName}
	}
	if req.BackURLs != (usecase.PreferenceBackURLs{}) {
		body.BackURLs = &backURLs{
			Success: req.BackURLs.Success,
			Failure: req.BackURLs.Failure,
			Pending: req.BackURLs.Pending,
		}
	}

	raw, err := c.post(ctx, "/checkout/preferences", body)
	if err != nil {
		return nil, err
	}

	var resp preferenceResponseBody
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errs.Wrap(err, "failed to decode preference response")
	}
	return &usecase.PreferenceResult{
		ID:               resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
	}, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build provider request")
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode provider request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build provider request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "provider request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errs.Wrap(err, "failed to read provider response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.Mark(fmt.Errorf("provider returned 404 for %s", req.URL.Path), usecase.ErrProviderNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errs.New(fmt.Sprintf("provider returned %d for %s: %s", resp.StatusCode, req.URL.Path, truncate(raw, 256)))
	}
	return raw, nil
}

// Provider amounts arrive as JSON floats; the ledger stores whole pesos.
func roundAmount(v float64) int64 {
	return int64(math.Round(v))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
