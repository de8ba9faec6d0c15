package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sanosuguru/go-show-ticket-booking/internal/domain/payment"
)

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int    `json:"amount"`
}

// HTTPProcessor はJSON over HTTP の決済APIに課金を依頼する
// 予約試行IDを Idempotency-Key として送る
type HTTPProcessor struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPProcessor(url, apiKey string, timeout time.Duration) *HTTPProcessor {
	return &HTTPProcessor{url: url, apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

func (p *HTTPProcessor) Charge(ctx context.Context, req ChargeRequest) (*payment.Charge, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("課金リクエスト作成に失敗: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", payment.ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.Reference)
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", payment.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: レスポンス読み込みに失敗: %w", payment.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, payment.ErrDeclined
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", payment.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return nil, fmt.Errorf("%w: status %d", payment.ErrDeclined, resp.StatusCode)
	}

	var cr chargeResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("%w: レスポンス解析に失敗: %w", payment.ErrUnavailable, err)
	}
	if payment.ChargeStatus(cr.Status) != payment.ChargeSucceeded {
		return nil, fmt.Errorf("%w: status %q", payment.ErrDeclined, cr.Status)
	}
	if cr.Amount != 0 && cr.Amount != req.Amount {
		ch := &payment.Charge{ID: cr.ID, Amount: cr.Amount, Status: payment.ChargeSucceeded}
		return ch, fmt.Errorf("%w: 承認額 %d, 請求額 %d", payment.ErrAmountMismatch, cr.Amount, req.Amount)
	}
	return &payment.Charge{ID: cr.ID, Amount: req.Amount, Status: payment.ChargeSucceeded}, nil
}
