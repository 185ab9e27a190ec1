package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"lms/internal/config"
	"lms/internal/domain/model"
	"lms/internal/handler"
	"lms/internal/infra/db"
	"lms/internal/infra/payment"
	infraRepo "lms/internal/infra/repository"
	"lms/internal/usecase"
	auth "lms/internal/usecase/auth_usecase"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// 開発用のコード送信。SMTPを繋ぐまではログに出すだけ。
type logOTPSender struct {
	logger *slog.Logger
}

func (s *logOTPSender) Send(ctx context.Context, email string, code string) error {
	s.logger.Info("password reset code issued", "email", email, "code", code)
	return nil
}

func main() {
	// .envは無くても起動できる（本番は環境変数で渡す）
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	// DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Lecture{},
		&model.Purchase{},
		&model.Enrollment{},
		&model.Cart{},
		&model.CartItem{},
		&model.Feedback{},
		&model.PasswordResetOTP{},
		&model.ChatMessage{},
	); err != nil {
		logger.Error("auto migrate failed", "error", err)
		os.Exit(1)
	}

	// Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	courseRepo := infraRepo.NewCourseGormRepository(gormDB)
	lectureRepo := infraRepo.NewLectureGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	purchaseRepo := infraRepo.NewPurchaseGormRepository(gormDB)
	enrollmentRepo := infraRepo.NewEnrollmentGormRepository(gormDB)
	feedbackRepo := infraRepo.NewFeedbackGormRepository(gormDB)
	otpRepo := infraRepo.NewOTPGormRepository(gormDB)
	chatMsgRepo := infraRepo.NewChatMessageGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	// usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	// bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	// JWT issuer
	issuer := auth.NewJWTAccessTokenIssuer(cfg.JWTSecret)

	// Stripe
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	resetUC := auth.NewPasswordResetUsecase(userRepo, otpRepo, hasher, verifier, &logOTPSender{logger: logger}, clock)
	changeUC := auth.NewChangePasswordUsecase(userRepo, hasher, verifier)

	checkoutUC := usecase.NewCheckoutUsecase(
		txManager, purchaseRepo, enrollmentRepo, courseRepo, userRepo,
		gateway, idGen, clock, logger,
		usecase.CheckoutURLs{
			Success: cfg.FEURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
			Cancel:  cfg.FEURL + "/payment-cancel",
		},
		cfg.Currency,
	)
	queryUC := usecase.NewPurchaseQueryUsecase(purchaseRepo, courseRepo, lectureRepo, gateway)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, courseRepo, checkoutUC, idGen, clock)
	courseUC := usecase.NewCourseUsecase(courseRepo, lectureRepo, enrollmentRepo, idGen, clock)
	userUC := usecase.NewUserUsecase(userRepo, enrollmentRepo, courseRepo)
	feedbackUC := usecase.NewFeedbackUsecase(feedbackRepo, idGen, clock)
	chatUC := usecase.NewChatUsecase(chatMsgRepo, courseRepo, idGen, clock)

	// Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, resetUC, changeUC)
	userH := handler.NewUserHandler(userUC)
	courseH := handler.NewCourseHandler(courseUC)
	cartH := handler.NewCartHandler(cartUC)
	purchaseH := handler.NewPurchaseHandler(checkoutUC, queryUC)
	feedbackH := handler.NewFeedbackHandler(feedbackUC)
	chatH := handler.NewChatHandler(chatUC)

	// Server起動
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowCredentials: true,
	}))

	authH.RegisterRoutes(e, cfg)
	userH.RegisterRoutes(e, cfg)
	courseH.RegisterRoutes(e, cfg)
	cartH.RegisterRoutes(e, cfg)
	purchaseH.RegisterRoutes(e, cfg)
	feedbackH.RegisterRoutes(e)
	chatH.RegisterRoutes(e, cfg)

	logger.Info("server starting", "port", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
