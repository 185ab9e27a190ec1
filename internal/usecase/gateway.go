package usecase

import (
	"context"
	"errors"
	"time"
)

// 署名検証に失敗した通知。台帳には一切触らない。
var ErrUntrustedSignal = errors.New("untrusted gateway signal")

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	PaymentStatusPaid      = "paid"
)

// 金額はゲートウェイの最小単位（セント）で渡す
type GatewayLineItem struct {
	Name            string
	ImageURL        string
	UnitAmountCents int64
	Quantity        int64
}

type CreateSessionInput struct {
	LineItems     []GatewayLineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Currency      string
	Metadata      map[string]string
}

type GatewaySession struct {
	ID  string
	URL string
}

type GatewayEvent struct {
	Type             string
	SessionID        string
	AmountTotalCents int64
	Currency         string
}

type GatewaySessionStatus struct {
	PaymentStatus    string
	AmountTotalCents int64
	Currency         string
}

type GatewayBalance struct {
	AvailableCents int64
	PendingCents   int64
	Currency       string
}

type GatewayTransaction struct {
	SessionID     string
	AmountCents   int64
	Currency      string
	CustomerEmail string
	PaymentStatus string
	CreatedAt     time.Time
}

// 決済ゲートウェイとの境界。
// VerifyAndParseEvent は生のボディと署名ヘッダを受け取り、
// 検証に失敗したら ErrUntrustedSignal を返す。
type PaymentGateway interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (GatewaySession, error)
	VerifyAndParseEvent(payload []byte, signatureHeader string) (GatewayEvent, error)
	RetrieveSession(ctx context.Context, sessionID string) (GatewaySessionStatus, error)
	GetBalance(ctx context.Context) (GatewayBalance, error)
	ListTransactions(ctx context.Context, limit int64) ([]GatewayTransaction, error)
}
