package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"lms/internal/usecase"
)

// StripeGateway は usecase.PaymentGateway のStripe実装。
type StripeGateway struct {
	sc            *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey string, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sc: sc, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateSession(ctx context.Context, in usecase.CreateSessionInput) (usecase.GatewaySession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(in.Currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(li.Name),
			},
			UnitAmount: stripe.Int64(li.UnitAmountCents),
		}
		if li.ImageURL != "" {
			priceData.ProductData.Images = stripe.StringSlice([]string{li.ImageURL})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripe.Int64(li.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		CustomerEmail:      stripe.String(in.CustomerEmail),
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return usecase.GatewaySession{}, fmt.Errorf("create checkout session: %w", err)
	}

	return usecase.GatewaySession{ID: s.ID, URL: s.URL}, nil
}

// VerifyAndParseEvent は署名を検証してからイベントを読む。
// 検証失敗は ErrUntrustedSignal で返し、呼び出し側にpayloadを信用させない。
func (g *StripeGateway) VerifyAndParseEvent(payload []byte, signatureHeader string) (usecase.GatewayEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return usecase.GatewayEvent{}, fmt.Errorf("%w: %v", usecase.ErrUntrustedSignal, err)
	}

	out := usecase.GatewayEvent{Type: string(event.Type)}

	if out.Type == usecase.EventCheckoutCompleted || out.Type == usecase.EventCheckoutExpired {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return usecase.GatewayEvent{}, fmt.Errorf("unmarshal checkout session: %w", err)
		}
		out.SessionID = session.ID
		out.AmountTotalCents = session.AmountTotal
		out.Currency = string(session.Currency)
	}

	return out, nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (usecase.GatewaySessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return usecase.GatewaySessionStatus{}, fmt.Errorf("retrieve checkout session: %w", err)
	}

	return usecase.GatewaySessionStatus{
		PaymentStatus:    string(s.PaymentStatus),
		AmountTotalCents: s.AmountTotal,
		Currency:         string(s.Currency),
	}, nil
}

func (g *StripeGateway) GetBalance(ctx context.Context) (usecase.GatewayBalance, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx

	b, err := g.sc.Balance.Get(params)
	if err != nil {
		return usecase.GatewayBalance{}, fmt.Errorf("get balance: %w", err)
	}

	out := usecase.GatewayBalance{}
	if len(b.Available) > 0 {
		out.AvailableCents = b.Available[0].Amount
		out.Currency = string(b.Available[0].Currency)
	}
	if len(b.Pending) > 0 {
		out.PendingCents = b.Pending[0].Amount
		if out.Currency == "" {
			out.Currency = string(b.Pending[0].Currency)
		}
	}
	return out, nil
}

func (g *StripeGateway) ListTransactions(ctx context.Context, limit int64) ([]usecase.GatewayTransaction, error) {
	params := &stripe.CheckoutSessionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)

	out := make([]usecase.GatewayTransaction, 0, limit)
	iter := g.sc.CheckoutSessions.List(params)
	for iter.Next() {
		s := iter.CheckoutSession()
		out = append(out, usecase.GatewayTransaction{
			SessionID:     s.ID,
			AmountCents:   s.AmountTotal,
			Currency:      string(s.Currency),
			CustomerEmail: s.CustomerEmail,
			PaymentStatus: string(s.PaymentStatus),
			CreatedAt:     time.Unix(s.Created, 0),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list checkout sessions: %w", err)
	}
	return out, nil
}
