package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

// ChatUsecase はコースごとのサポートチャット。
// 応答はキーワード一致の定型文で、外部のLLM等は呼ばない。
// やり取りは (user, course) 単位で保存し、履歴の取得・削除もここで行う。
type ChatUsecase struct {
	messages repo.ChatMessageRepository
	courses  repo.CourseRepository
	idGen    IDGenerator
	clock    Clock
}

func NewChatUsecase(
	messages repo.ChatMessageRepository,
	courses repo.CourseRepository,
	idGen IDGenerator,
	clock Clock,
) *ChatUsecase {
	return &ChatUsecase{messages: messages, courses: courses, idGen: idGen, clock: clock}
}

type SendChatInput struct {
	CourseID  string
	LectureID string
	Message   string
}

type ChatReply struct {
	Reply string `json:"reply"`
}

type ChatHistoryEntry struct {
	Role    model.ChatRole `json:"role"`
	Content string         `json:"content"`
}

var chatRules = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"refund", "money back"},
		reply:    "For refund requests, please contact support with your purchase details within 30 days.",
	},
	{
		keywords: []string{"payment", "checkout", "card"},
		reply:    "Payments are processed securely through our payment provider. If a checkout failed, please try again or contact support.",
	},
	{
		keywords: []string{"password", "reset", "forgot"},
		reply:    "You can reset your password from the login page. We will send a one-time code to your email.",
	},
	{
		keywords: []string{"certificate"},
		reply:    "Certificates are issued after you complete all lectures of a purchased course.",
	},
	{
		keywords: []string{"course", "enroll", "lecture"},
		reply:    "Browse the course catalog, add courses to your cart, and complete checkout to start learning.",
	},
	{
		keywords: []string{"hello", "hi", "hey"},
		reply:    "Hello! How can I help you today?",
	},
}

const chatFallback = "Sorry, I did not understand that. Please contact support for further assistance."

// Send は質問と応答を履歴に積んで応答を返す。
func (u *ChatUsecase) Send(ctx context.Context, userID string, in SendChatInput) (ChatReply, error) {
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return ChatReply{}, NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if in.CourseID == "" {
		return ChatReply{}, NewHTTPError(http.StatusBadRequest, "course id is required")
	}

	_, err := u.courses.FindByID(ctx, in.CourseID)
	if errors.Is(err, repo.ErrNotFound) {
		return ChatReply{}, NewHTTPError(http.StatusNotFound, "course not found")
	}
	if err != nil {
		return ChatReply{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	reply := matchReply(msg)
	now := u.clock.Now()

	if err := u.messages.Create(ctx, model.ChatMessage{
		ID:        u.idGen.NewID(),
		UserID:    userID,
		CourseID:  in.CourseID,
		LectureID: in.LectureID,
		Role:      model.ChatRoleUser,
		Content:   msg,
		CreatedAt: now,
	}); err != nil {
		return ChatReply{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.messages.Create(ctx, model.ChatMessage{
		ID:        u.idGen.NewID(),
		UserID:    userID,
		CourseID:  in.CourseID,
		LectureID: in.LectureID,
		Role:      model.ChatRoleSystem,
		Content:   reply,
		CreatedAt: now,
	}); err != nil {
		return ChatReply{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ChatReply{Reply: reply}, nil
}

// History は履歴がなくても空リストを返す（404にしない）。
func (u *ChatUsecase) History(ctx context.Context, userID string, courseID string) ([]ChatHistoryEntry, error) {
	if courseID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "course id is required")
	}

	items, err := u.messages.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]ChatHistoryEntry, 0, len(items))
	for _, m := range items {
		out = append(out, ChatHistoryEntry{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

func (u *ChatUsecase) ClearHistory(ctx context.Context, userID string, courseID string) error {
	if courseID == "" {
		return NewHTTPError(http.StatusBadRequest, "course id is required")
	}

	if err := u.messages.DeleteByUserAndCourse(ctx, userID, courseID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func matchReply(msg string) string {
	lower := strings.ToLower(msg)
	for _, rule := range chatRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply
			}
		}
	}
	return chatFallback
}
