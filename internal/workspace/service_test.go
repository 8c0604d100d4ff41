package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/virelio/ai-workspace/internal/catalog"
	"github.com/virelio/ai-workspace/internal/inference"
	"gorm.io/gorm"
)

type fakeProvider struct {
	reply string
	err   error
	last  string
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	p.last = prompt
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishJob(ctx context.Context, job *Job) error {
	_ = ctx
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, job.ID)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, prov *fakeProvider, pub *fakePublisher) *Service {
	t.Helper()
	reg := inference.NewRegistry()
	reg.Register("fake", func(ctx context.Context, model string) (inference.Provider, error) {
		_ = ctx
		_ = model
		return prov, nil
	})
	return NewService(NewManager(), reg, NewRepo(openTestDB(t)), pub, "fake", "default")
}

func TestSend_AppendsUserAndAssistant(t *testing.T) {
	prov := &fakeProvider{reply: "generated"}
	svc := newTestService(t, prov, &fakePublisher{})

	conv, err := svc.Send(context.Background(), 1, "text-to-code-1", "write a loop", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Role != RoleUser || conv.Messages[1].Role != RoleAssistant {
		t.Fatalf("unexpected roles %v %v", conv.Messages[0].Role, conv.Messages[1].Role)
	}
	if conv.Messages[1].Content != "generated" {
		t.Fatalf("unexpected reply %q", conv.Messages[1].Content)
	}
	if conv.Messages[1].MediaType != catalog.MediaTypeCode {
		t.Fatalf("expected code media type, got %q", conv.Messages[1].MediaType)
	}
	if prov.last != "write a loop" {
		t.Fatalf("provider saw prompt %q", prov.last)
	}
	if conv.Busy {
		t.Fatalf("busy should clear after the reply")
	}
}

func TestSend_DefaultModel(t *testing.T) {
	svc := newTestService(t, &fakeProvider{reply: "ok"}, &fakePublisher{})

	conv, err := svc.Send(context.Background(), 1, "", "hi", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := conv.Messages[1].ModelID; got != catalog.DefaultModel().ID {
		t.Fatalf("expected default model, got %q", got)
	}
}

func TestSend_UnknownModel(t *testing.T) {
	svc := newTestService(t, &fakeProvider{reply: "ok"}, &fakePublisher{})

	_, err := svc.Send(context.Background(), 1, "no-such-model", "hi", nil)
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
	// nothing should have been appended anywhere
	if n := len(svc.Store(1).List()); n != 0 {
		t.Fatalf("rejected send must not create conversations, got %d", n)
	}
}

func TestSend_InferenceFailureBecomesMessage(t *testing.T) {
	prov := &fakeProvider{err: &inference.Error{Msg: "request failed"}}
	svc := newTestService(t, prov, &fakePublisher{})

	conv, err := svc.Send(context.Background(), 1, "", "hi", nil)
	if err != nil {
		t.Fatalf("send should not fail outward: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected user + error message, got %d", len(conv.Messages))
	}
	tail := conv.Messages[1]
	if tail.Role != RoleAssistant || !strings.Contains(tail.Content, "request failed") {
		t.Fatalf("error should surface as an assistant message, got %+v", tail)
	}
	if conv.Busy {
		t.Fatalf("busy should return to false after a failure")
	}
}

func TestSendAsync_RunAndResolve(t *testing.T) {
	prov := &fakeProvider{reply: "async answer"}
	pub := &fakePublisher{}
	svc := newTestService(t, prov, pub)

	job, created, err := svc.SendAsync(context.Background(), 7, "text-to-image-1", "draw a cat", nil, nil)
	if err != nil {
		t.Fatalf("send async: %v", err)
	}
	if !created {
		t.Fatalf("expected a new job")
	}
	if len(pub.published) != 1 || pub.published[0] != job.ID {
		t.Fatalf("job not published: %v", pub.published)
	}
	if job.Status != JobQueued {
		t.Fatalf("unexpected status %q", job.Status)
	}

	// user message is visible before the job runs
	conv, ok := svc.Store(7).Get(job.ConversationID)
	if !ok || len(conv.Messages) != 1 || !conv.Busy {
		t.Fatalf("optimistic append missing: ok=%v %+v", ok, conv)
	}

	if err := svc.RunJob(context.Background(), job.ID); err != nil {
		t.Fatalf("run job: %v", err)
	}

	got, updated, err := svc.ResolveJob(context.Background(), 7, job.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Status != JobSucceeded {
		t.Fatalf("unexpected status %q", got.Status)
	}
	if updated == nil {
		t.Fatalf("first resolve should deliver the conversation")
	}
	tail := updated.Messages[len(updated.Messages)-1]
	if tail.Content != "async answer" || tail.MediaType != catalog.MediaTypeImage {
		t.Fatalf("unexpected delivered message %+v", tail)
	}

	// second resolve must not append again
	got2, updated2, err := svc.ResolveJob(context.Background(), 7, job.ID)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if updated2 != nil {
		t.Fatalf("result must apply exactly once")
	}
	if !got2.Applied {
		t.Fatalf("job should be marked applied")
	}
}

func TestSendAsync_IdempotencyKeyReusesJob(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(t, &fakeProvider{reply: "retried answer"}, pub)

	key := "client-key-1"
	first, created, err := svc.SendAsync(context.Background(), 1, "", "hello", nil, &key)
	if err != nil || !created {
		t.Fatalf("first send: created=%v err=%v", created, err)
	}

	second, created, err := svc.SendAsync(context.Background(), 1, "", "hello", nil, &key)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if created {
		t.Fatalf("duplicate key must not create a new job")
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing job %s, got %s", first.ID, second.ID)
	}
	if len(pub.published) != 1 {
		t.Fatalf("duplicate must not be re-published, got %d", len(pub.published))
	}

	// the retry must not touch the conversation: one user message, no
	// superseded tag
	conv, ok := svc.Store(1).Get(first.ConversationID)
	if !ok || len(conv.Messages) != 1 {
		t.Fatalf("retry duplicated the user message: ok=%v messages=%d", ok, len(conv.Messages))
	}

	if err := svc.RunJob(context.Background(), first.ID); err != nil {
		t.Fatalf("run job: %v", err)
	}
	_, updated, err := svc.ResolveJob(context.Background(), 1, first.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if updated == nil {
		t.Fatalf("reply must still deliver after a retried send")
	}
	if n := len(updated.Messages); n != 2 {
		t.Fatalf("expected user + assistant, got %d messages", n)
	}
	tail := updated.Messages[len(updated.Messages)-1]
	if tail.Content != "retried answer" {
		t.Fatalf("unexpected delivered reply %q", tail.Content)
	}
	if updated.Busy {
		t.Fatalf("busy must clear once the reply lands")
	}
}

func TestSendAsync_PublishFailureBecomesMessage(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker unreachable")}
	svc := newTestService(t, &fakeProvider{reply: "never"}, pub)

	job, _, err := svc.SendAsync(context.Background(), 5, "", "hi", nil, nil)
	if err != nil {
		t.Fatalf("enqueue failure should fold into the conversation, got %v", err)
	}
	if job.Status != JobFailed {
		t.Fatalf("job should be failed, got %q", job.Status)
	}
	if !job.Applied {
		t.Fatalf("folded failure should mark the job applied")
	}

	conv, ok := svc.Store(5).Get(job.ConversationID)
	if !ok {
		t.Fatalf("conversation missing")
	}
	if conv.Busy {
		t.Fatalf("busy must clear when the enqueue fails")
	}
	if n := len(conv.Messages); n != 2 {
		t.Fatalf("expected user + error message, got %d", n)
	}
	tail := conv.Messages[len(conv.Messages)-1]
	if tail.Role != RoleAssistant || !strings.Contains(tail.Content, "broker unreachable") {
		t.Fatalf("failure should surface as an assistant message, got %+v", tail)
	}

	// a later poll must not deliver anything further
	_, updated, err := svc.ResolveJob(context.Background(), 5, job.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if updated != nil {
		t.Fatalf("folded failure must not be delivered twice")
	}
}

func TestResolveJob_DeletedConversation(t *testing.T) {
	svc := newTestService(t, &fakeProvider{reply: "late"}, &fakePublisher{})

	job, _, err := svc.SendAsync(context.Background(), 3, "", "hi", nil, nil)
	if err != nil {
		t.Fatalf("send async: %v", err)
	}
	svc.Store(3).DeleteConversation(job.ConversationID)

	if err := svc.RunJob(context.Background(), job.ID); err != nil {
		t.Fatalf("run job: %v", err)
	}

	got, updated, err := svc.ResolveJob(context.Background(), 3, job.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if updated != nil {
		t.Fatalf("orphaned result must be dropped")
	}
	if got.Status != JobSucceeded {
		t.Fatalf("job itself still succeeded, got %q", got.Status)
	}
}

func TestResolveJob_FailureBecomesMessage(t *testing.T) {
	prov := &fakeProvider{err: errors.New("model loading")}
	svc := newTestService(t, prov, &fakePublisher{})

	job, _, err := svc.SendAsync(context.Background(), 4, "", "hi", nil, nil)
	if err != nil {
		t.Fatalf("send async: %v", err)
	}
	if err := svc.RunJob(context.Background(), job.ID); err == nil {
		t.Fatalf("run should report the provider failure")
	}

	got, updated, err := svc.ResolveJob(context.Background(), 4, job.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Status != JobFailed {
		t.Fatalf("unexpected status %q", got.Status)
	}
	if updated == nil {
		t.Fatalf("failure should be delivered into the conversation")
	}
	tail := updated.Messages[len(updated.Messages)-1]
	if tail.Role != RoleAssistant || !strings.Contains(tail.Content, "model loading") {
		t.Fatalf("unexpected failure message %+v", tail)
	}
	if updated.Busy {
		t.Fatalf("busy should clear on failure delivery")
	}
}

func TestResolveJob_HidesOtherUsersJobs(t *testing.T) {
	svc := newTestService(t, &fakeProvider{reply: "ok"}, &fakePublisher{})

	job, _, err := svc.SendAsync(context.Background(), 1, "", "hi", nil, nil)
	if err != nil {
		t.Fatalf("send async: %v", err)
	}

	_, _, err = svc.ResolveJob(context.Background(), 2, job.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found for foreign job, got %v", err)
	}
}
