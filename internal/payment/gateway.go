package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NTWKKM/ntwcoffeeroaster/internal/logger"
)

const (
	defaultBaseURL = "https://api.stripe.com"

	// The shop sells in Thai baht, a two-decimal currency: the processor
	// wants satang, so major units are multiplied by 100.
	currency = "thb"
)

// Intent is the processor-side object for an in-progress charge attempt.
// The client secret is handed to the frontend to complete payment.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"` // minor units
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Gateway creates payment intents with the processor.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64) (*Intent, error)
}

type stripeGateway struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewStripeGateway returns a Gateway talking to the live Stripe API.
func NewStripeGateway(secretKey string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}
	return &stripeGateway{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewStripeGatewayWithBaseURL is like NewStripeGateway but against a custom
// endpoint. Tests point this at an httptest server.
func NewStripeGatewayWithBaseURL(secretKey, baseURL string) Gateway {
	g := NewStripeGateway(secretKey).(*stripeGateway)
	g.baseURL = baseURL
	return g
}

// CreateIntent converts amount from major to minor units and requests a
// payment intent in the fixed shop currency.
func (g *stripeGateway) CreateIntent(ctx context.Context, amount float64) (*Intent, error) {
	minor := int64(math.Round(amount * 100))

	log := logger.L().With(
		zap.Float64("amount", amount),
		zap.Int64("amount_minor", minor),
		zap.String("currency", currency),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minor, 10))
	form.Set("currency", currency)

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}
	req.SetBasicAuth(g.secretKey, "")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Stripe request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("Stripe returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("stripe error: %s", string(bodyBytes))
	}

	var intent Intent
	if err := json.Unmarshal(bodyBytes, &intent); err != nil {
		log.Error("Failed decoding Stripe response", zap.Error(err))
		return nil, err
	}

	log.Info("Payment intent created",
		zap.String("intent_id", intent.ID),
		zap.String("status", intent.Status),
	)

	return &intent, nil
}
