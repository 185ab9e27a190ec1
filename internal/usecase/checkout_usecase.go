package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

// チェックアウト用のリダイレクト先
type CheckoutURLs struct {
	Success string
	Cancel  string
}

// CheckoutUsecase はチェックアウト開始と入金確定の突合を担当する。
// webhook（push）とステータス照会（pull）の両方がここに合流し、
// どちらが先でも・何回届いても台帳は1回分しか進まない。
type CheckoutUsecase struct {
	tx          repo.TransactionManager
	purchases   repo.PurchaseRepository
	enrollments repo.EnrollmentRepository
	courses     repo.CourseRepository
	users       repo.UserRepository
	gateway     PaymentGateway
	idGen       IDGenerator
	clock       Clock
	logger      *slog.Logger
	urls        CheckoutURLs
	currency    string
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	purchases repo.PurchaseRepository,
	enrollments repo.EnrollmentRepository,
	courses repo.CourseRepository,
	users repo.UserRepository,
	gateway PaymentGateway,
	idGen IDGenerator,
	clock Clock,
	logger *slog.Logger,
	urls CheckoutURLs,
	currency string,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:          tx,
		purchases:   purchases,
		enrollments: enrollments,
		courses:     courses,
		users:       users,
		gateway:     gateway,
		idGen:       idGen,
		clock:       clock,
		logger:      logger,
		urls:        urls,
		currency:    currency,
	}
}

type BeginCheckoutOutput struct {
	URL string `json:"url"`
}

// BeginCheckout は複数コースを1セッションで決済に回す。
// 台帳はコースごとに1行（pending）で、全行に同じセッションIDを付ける。
func (u *CheckoutUsecase) BeginCheckout(ctx context.Context, userID string, courseIDs []string) (BeginCheckoutOutput, error) {
	if userID == "" {
		return BeginCheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(courseIDs) == 0 {
		return BeginCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "no courses to checkout")
	}

	// 重複IDは1つにまとめる
	ids := dedupe(courseIDs)

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return BeginCheckoutOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return BeginCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	courses, err := u.courses.FindByIDs(ctx, ids)
	if err != nil {
		return BeginCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(courses) != len(ids) {
		return BeginCheckoutOutput{}, NewHTTPError(http.StatusNotFound, "course not found")
	}

	for _, c := range courses {
		enrolled, err := u.enrollments.Exists(ctx, userID, c.ID)
		if err != nil {
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if enrolled {
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusConflict, "already enrolled")
		}

		// 同じコースの pending が残っている間は新しいセッションを作らない
		active, err := u.purchases.ExistsActive(ctx, userID, c.ID)
		if err != nil {
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if active {
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusConflict, "checkout already in progress")
		}
	}

	// pending行を先に作る（セッションIDはゲートウェイ確定後に付ける）
	now := u.clock.Now()
	created := make([]model.Purchase, 0, len(courses))
	for _, c := range courses {
		p := model.Purchase{
			ID:        u.idGen.NewID(),
			UserID:    userID,
			CourseID:  c.ID,
			UserEmail: user.Email,
			Amount:    c.Price,
			Currency:  u.currency,
			Status:    model.PurchaseStatusPending,
			CreatedAt: now,
		}
		if err := u.purchases.Create(ctx, p); err != nil {
			u.rollbackPending(ctx, created)
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created = append(created, p)
	}

	courseIDsJSON, _ := json.Marshal(ids)

	lineItems := make([]GatewayLineItem, 0, len(courses))
	for _, c := range courses {
		lineItems = append(lineItems, GatewayLineItem{
			Name:            c.Title,
			ImageURL:        c.ThumbnailURL,
			UnitAmountCents: toCents(c.Price),
			Quantity:        1,
		})
	}

	session, err := u.gateway.CreateSession(ctx, CreateSessionInput{
		LineItems:     lineItems,
		CustomerEmail: user.Email,
		SuccessURL:    u.urls.Success,
		CancelURL:     u.urls.Cancel,
		Currency:      u.currency,
		Metadata: map[string]string{
			"userId":    userID,
			"userEmail": user.Email,
			"courseIds": string(courseIDsJSON),
		},
	})
	if err != nil || session.URL == "" {
		// セッションが取れなければ pending行は残さない
		u.rollbackPending(ctx, created)
		u.logger.Error("gateway session creation failed", "error", err)
		return BeginCheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}

	for i, p := range created {
		if err := u.purchases.AttachSession(ctx, p.ID, session.ID); err != nil {
			// セッションIDなしの pending を残すと同じコースの再購入を塞ぎ続ける。
			// 付与済みの行はセッション失効のwebhookで回収される。
			u.rollbackPending(ctx, created[i:])
			u.logger.Error("attach session failed", "session_id", session.ID, "purchase_id", p.ID, "error", err)
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	u.logger.Info("checkout session created",
		"session_id", session.ID, "user_id", userID, "courses", len(courses))

	return BeginCheckoutOutput{URL: session.URL}, nil
}

// セッション作成に失敗したときの後始末
func (u *CheckoutUsecase) rollbackPending(ctx context.Context, created []model.Purchase) {
	for _, p := range created {
		if err := u.purchases.Delete(ctx, p.ID); err != nil {
			u.logger.Error("failed to clean up pending purchase", "purchase_id", p.ID, "error", err)
		}
	}
}

// CompleteCheckout は検証済みの入金確定をセッションの全行に適用する。
// 各行は pending のときだけ completed に遷移する（条件付きUPDATE）ので、
// webhookとポーリングが同時に来ても受講登録は1回しか起きない。
// 行ごとに「確定→受講登録→カートから除去」を1トランザクションで行い、
// 途中で落ちても同じセッションIDで再実行すれば残りだけが進む。
func (u *CheckoutUsecase) CompleteCheckout(ctx context.Context, sessionID string, observedTotalCents int64) error {
	rows, err := u.purchases.ListBySession(ctx, sessionID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(rows) == 0 {
		// ゲートウェイの再送を止めるため、迷子セッションはエラーにしない
		u.logger.Warn("orphan session", "session_id", sessionID)
		return nil
	}

	observed := decimal.New(observedTotalCents, -2)

	// 複数行のセッションでは合計額を行単位に配分できないので、
	// 1行のときだけゲートウェイの確定額で見積額を上書きする。
	single := len(rows) == 1
	if !single && observedTotalCents > 0 {
		quoted := decimal.Zero
		for _, p := range rows {
			quoted = quoted.Add(p.Amount)
		}
		if !quoted.Equal(observed) {
			u.logger.Warn("observed total differs from quoted sum",
				"session_id", sessionID, "quoted", quoted.String(), "observed", observed.String())
		}
	}

	now := u.clock.Now()

	for _, p := range rows {
		amount := p.Amount
		if single && observedTotalCents > 0 {
			amount = observed
		}

		row := p
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			won, err := r.Purchases().MarkCompleted(ctx, row.ID, amount, now)
			if err != nil {
				return err
			}
			if !won {
				// 既に completed（再配信）。何もしない。
				u.logger.Info("completion replay ignored",
					"session_id", sessionID, "purchase_id", row.ID)
				return nil
			}

			if err := r.Enrollments().Add(ctx, model.Enrollment{
				ID:         u.idGen.NewID(),
				UserID:     row.UserID,
				CourseID:   row.CourseID,
				PurchaseID: row.ID,
				CreatedAt:  now,
			}); err != nil {
				return err
			}

			// 購入が確定したコースだけカートから外す（台帳起点）
			if err := r.CartItems().DeleteByUserAndCourse(ctx, row.UserID, row.CourseID); err != nil {
				return err
			}

			u.logger.Info("purchase completed",
				"session_id", sessionID, "purchase_id", row.ID,
				"user_id", row.UserID, "course_id", row.CourseID)
			return nil
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return nil
}

// HandleWebhook はゲートウェイからの非同期通知の入口。
// 署名が不正なら何もせず 400。検証後の処理エラーはログに残して
// 飲み込む（再送ストームを避けるため、呼び出し側は200を返す）。
func (u *CheckoutUsecase) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := u.gateway.VerifyAndParseEvent(payload, signatureHeader)
	if err != nil {
		if errors.Is(err, ErrUntrustedSignal) {
			u.logger.Warn("webhook signature verification failed")
			return NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		// 署名は通っている。4xxを返すとゲートウェイが再送し続けるので
		// ログだけ残して受領扱いにする。
		u.logger.Error("webhook event parse failed", "error", err)
		return nil
	}

	switch event.Type {
	case EventCheckoutCompleted:
		if err := u.CompleteCheckout(ctx, event.SessionID, event.AmountTotalCents); err != nil {
			u.logger.Error("webhook completion failed", "session_id", event.SessionID, "error", err)
		}
	case EventCheckoutExpired:
		if err := u.FailCheckout(ctx, event.SessionID); err != nil {
			u.logger.Error("webhook expiry handling failed", "session_id", event.SessionID, "error", err)
		}
	default:
		u.logger.Info("unhandled webhook event", "type", event.Type)
	}
	return nil
}

// FailCheckout はセッション失効をセッションの全行に適用する。
// pending の行だけ failed に倒す（確定済みの行には触らない）。
func (u *CheckoutUsecase) FailCheckout(ctx context.Context, sessionID string) error {
	rows, err := u.purchases.ListBySession(ctx, sessionID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(rows) == 0 {
		u.logger.Warn("orphan session", "session_id", sessionID)
		return nil
	}

	now := u.clock.Now()
	for _, p := range rows {
		failed, err := u.purchases.MarkFailed(ctx, p.ID, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if failed {
			u.logger.Info("purchase failed",
				"session_id", sessionID, "purchase_id", p.ID, "course_id", p.CourseID)
		}
	}
	return nil
}

type SessionStatusOutput struct {
	Status    string `json:"status"`
	Processed bool   `json:"processed"`
}

// CheckSessionStatus はクライアント側からのポーリング入口。
// 支払い済みならwebhookと同じ確定処理に合流する。
func (u *CheckoutUsecase) CheckSessionStatus(ctx context.Context, sessionID string) (SessionStatusOutput, error) {
	if sessionID == "" {
		return SessionStatusOutput{}, NewHTTPError(http.StatusBadRequest, "session id is required")
	}

	st, err := u.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return SessionStatusOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}

	out := SessionStatusOutput{Status: st.PaymentStatus}
	if st.PaymentStatus == PaymentStatusPaid {
		err := u.CompleteCheckout(ctx, sessionID, st.AmountTotalCents)
		out.Processed = err == nil
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
