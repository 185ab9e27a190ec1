package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
	"lms/internal/usecase"
)

type ChatMsgRepoMock struct{ mock.Mock }

func (m *ChatMsgRepoMock) Create(ctx context.Context, msg model.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *ChatMsgRepoMock) ListByUserAndCourse(ctx context.Context, userID string, courseID string) ([]model.ChatMessage, error) {
	args := m.Called(ctx, userID, courseID)
	items, _ := args.Get(0).([]model.ChatMessage)
	return items, args.Error(1)
}

func (m *ChatMsgRepoMock) DeleteByUserAndCourse(ctx context.Context, userID string, courseID string) error {
	args := m.Called(ctx, userID, courseID)
	return args.Error(0)
}

type chatFixture struct {
	messages *ChatMsgRepoMock
	courses  *CartCourseRepoMock
	uc       *usecase.ChatUsecase
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		messages: new(ChatMsgRepoMock),
		courses:  new(CartCourseRepoMock),
	}
	f.uc = usecase.NewChatUsecase(
		f.messages, f.courses,
		&seqIDGen{}, fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	)
	return f
}

func TestChatUsecase_KeywordMatchPersistsBothSides(t *testing.T) {
	f := newChatFixture()

	f.courses.On("FindByID", mock.Anything, "course-1").
		Return(model.Course{ID: "course-1", IsPublished: true}, nil)
	f.messages.On("Create", mock.Anything, mock.MatchedBy(func(m model.ChatMessage) bool {
		return m.Role == model.ChatRoleUser && m.CourseID == "course-1"
	})).Return(nil)
	f.messages.On("Create", mock.Anything, mock.MatchedBy(func(m model.ChatMessage) bool {
		return m.Role == model.ChatRoleSystem && m.CourseID == "course-1"
	})).Return(nil)

	out, err := f.uc.Send(context.Background(), "user-1", usecase.SendChatInput{
		CourseID: "course-1",
		Message:  "How do I get a REFUND?",
	})
	assert.NoError(t, err)
	assert.Contains(t, out.Reply, "refund")

	// 質問と応答の両方が履歴に入る
	f.messages.AssertNumberOfCalls(t, "Create", 2)
}

func TestChatUsecase_Fallback(t *testing.T) {
	f := newChatFixture()

	f.courses.On("FindByID", mock.Anything, "course-1").
		Return(model.Course{ID: "course-1"}, nil)
	f.messages.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Send(context.Background(), "user-1", usecase.SendChatInput{
		CourseID: "course-1",
		Message:  "qwertyasdf",
	})
	assert.NoError(t, err)
	assert.Contains(t, out.Reply, "contact support")
}

func TestChatUsecase_EmptyMessage(t *testing.T) {
	f := newChatFixture()

	_, err := f.uc.Send(context.Background(), "user-1", usecase.SendChatInput{
		CourseID: "course-1",
		Message:  "   ",
	})
	assertHTTPStatus(t, err, 400)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestChatUsecase_UnknownCourse(t *testing.T) {
	f := newChatFixture()

	f.courses.On("FindByID", mock.Anything, "course-x").
		Return(model.Course{}, repo.ErrNotFound)

	_, err := f.uc.Send(context.Background(), "user-1", usecase.SendChatInput{
		CourseID: "course-x",
		Message:  "hello",
	})
	assertHTTPStatus(t, err, 404)
}

func TestChatUsecase_HistoryEmptyIsNot404(t *testing.T) {
	f := newChatFixture()

	f.messages.On("ListByUserAndCourse", mock.Anything, "user-1", "course-1").
		Return([]model.ChatMessage{}, nil)

	out, err := f.uc.History(context.Background(), "user-1", "course-1")
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestChatUsecase_HistoryReturnsStoredMessages(t *testing.T) {
	f := newChatFixture()

	f.messages.On("ListByUserAndCourse", mock.Anything, "user-1", "course-1").
		Return([]model.ChatMessage{
			{Role: model.ChatRoleUser, Content: "hello"},
			{Role: model.ChatRoleSystem, Content: "Hello! How can I help you today?"},
		}, nil)

	out, err := f.uc.History(context.Background(), "user-1", "course-1")
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, model.ChatRoleUser, out[0].Role)
	assert.Equal(t, model.ChatRoleSystem, out[1].Role)
}

func TestChatUsecase_ClearHistory(t *testing.T) {
	f := newChatFixture()

	f.messages.On("DeleteByUserAndCourse", mock.Anything, "user-1", "course-1").Return(nil)

	err := f.uc.ClearHistory(context.Background(), "user-1", "course-1")
	assert.NoError(t, err)
	f.messages.AssertCalled(t, "DeleteByUserAndCourse", mock.Anything, "user-1", "course-1")
}
