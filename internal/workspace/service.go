package workspace

import (
	"context"
	"errors"

	"github.com/virelio/ai-workspace/internal/catalog"
	"github.com/virelio/ai-workspace/internal/common"
	"github.com/virelio/ai-workspace/internal/inference"
	"gorm.io/gorm"
)

var ErrUnknownModel = errors.New("unknown model")

// Publisher enqueues a job for the worker.
type Publisher interface {
	PublishJob(ctx context.Context, job *Job) error
}

// Service routes sends through the selected model: the in-memory store
// keeps the conversation, the inference provider produces the reply,
// and the catalog decides which media branch the reply renders as.
type Service struct {
	stores    *Manager
	registry  *inference.Registry
	repo      *Repo
	publisher Publisher

	providerName  string
	providerModel string
}

func NewService(stores *Manager, registry *inference.Registry, repo *Repo, publisher Publisher, providerName, providerModel string) *Service {
	return &Service{
		stores:        stores,
		registry:      registry,
		repo:          repo,
		publisher:     publisher,
		providerName:  providerName,
		providerModel: providerModel,
	}
}

// Store exposes the per-user conversation store for plain state
// operations (list, create, select, rename, delete).
func (s *Service) Store(userID uint64) *Store {
	return s.stores.ForUser(userID)
}

// DropSession clears a user's in-memory workspace state on sign-out.
func (s *Service) DropSession(userID uint64) {
	s.stores.Drop(userID)
}

func (s *Service) resolveModel(modelID string) (string, error) {
	if modelID == "" {
		return catalog.DefaultModel().ID, nil
	}
	if _, ok := catalog.ModelByID(modelID); !ok {
		return "", ErrUnknownModel
	}
	return modelID, nil
}

// Send appends the user message, performs one inference attempt and
// folds the outcome back into the conversation. An inference failure is
// not an error of Send: it becomes an assistant-role message, per the
// failure policy, and the conversation stays usable.
func (s *Service) Send(ctx context.Context, userID uint64, modelID, content string, attachments []string) (Conversation, error) {
	model, err := s.resolveModel(modelID)
	if err != nil {
		return Conversation{}, err
	}

	st := s.stores.ForUser(userID)
	conv, tag := st.SendMessage(content, attachments)

	provider, err := s.registry.Get(ctx, s.providerName, s.providerModel)
	if err != nil {
		if c, applied := st.ApplyAssistantError(tag, err.Error()); applied {
			return c, nil
		}
		return conv, nil
	}

	reply, err := provider.Generate(ctx, content)
	if err != nil {
		if c, applied := st.ApplyAssistantError(tag, err.Error()); applied {
			return c, nil
		}
		return conv, nil
	}

	if c, applied := st.ApplyAssistantReply(tag, reply, model, catalog.MediaTypeForModel(model), ""); applied {
		return c, nil
	}
	return conv, nil
}

// SendAsync appends the user message, persists a job and enqueues it.
// The bool reports whether a new job was created (false when an
// idempotency key matched an existing one). A retried key is answered
// from the existing job before the store is touched, so the retry never
// duplicates the user message or invalidates the original reply tag.
func (s *Service) SendAsync(ctx context.Context, userID uint64, modelID, content string, attachments []string, idempotencyKey *string) (*Job, bool, error) {
	model, err := s.resolveModel(modelID)
	if err != nil {
		return nil, false, err
	}

	if idempotencyKey != nil && *idempotencyKey != "" {
		existing, err := s.repo.GetJobByUserAndIdempotencyKey(ctx, userID, *idempotencyKey)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	st := s.stores.ForUser(userID)
	_, tag := st.SendMessage(content, attachments)

	jobID, err := common.NewULID()
	if err != nil {
		return nil, false, err
	}

	job := &Job{
		ID:             jobID,
		UserID:         userID,
		ConversationID: tag.ConversationID,
		Seq:            tag.Seq,
		ModelID:        model,
		Prompt:         content,
		IdempotencyKey: idempotencyKey,
		Status:         JobQueued,
	}

	job, created, err := s.repo.CreateJobOrGetExisting(ctx, job)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// A concurrent retry won the insert. The existing job owns the
		// reply; release this send so the conversation does not stay busy.
		st.ApplyAssistantError(tag, "duplicate request")
		return job, false, nil
	}

	if err := s.publisher.PublishJob(ctx, job); err != nil {
		// The queued row will never be consumed. Fail it and surface the
		// failure as a chat message so the conversation stays usable.
		_ = s.repo.MarkJobFailed(ctx, job.ID, err.Error())
		_, _ = s.repo.MarkJobApplied(ctx, job.ID)
		st.ApplyAssistantError(tag, "enqueue failed: "+err.Error())

		failed := err.Error()
		job.Status = JobFailed
		job.Error = &failed
		job.Applied = true
		return job, true, nil
	}
	return job, created, nil
}

// ResolveJob returns a job's state and, the first time a terminal job
// is seen, folds its result into the owning conversation. Results whose
// conversation was deleted mid-flight, or whose send was superseded,
// are discarded by the store guard.
func (s *Service) ResolveJob(ctx context.Context, userID uint64, jobID string) (*Job, *Conversation, error) {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job.UserID != userID {
		// hide existence
		return nil, nil, gorm.ErrRecordNotFound
	}

	if job.Status != JobSucceeded && job.Status != JobFailed {
		return job, nil, nil
	}
	if job.Applied {
		return job, nil, nil
	}

	claimed, err := s.repo.MarkJobApplied(ctx, job.ID)
	if err != nil {
		return nil, nil, err
	}
	if !claimed {
		return job, nil, nil
	}
	job.Applied = true

	st := s.stores.ForUser(userID)
	tag := RequestTag{ConversationID: job.ConversationID, Seq: job.Seq}

	switch job.Status {
	case JobSucceeded:
		var result string
		if job.ResultText != nil {
			result = *job.ResultText
		}
		if conv, applied := st.ApplyAssistantReply(tag, result, job.ModelID, catalog.MediaTypeForModel(job.ModelID), ""); applied {
			return job, &conv, nil
		}
	case JobFailed:
		errText := "inference failed"
		if job.Error != nil && *job.Error != "" {
			errText = *job.Error
		}
		if conv, applied := st.ApplyAssistantError(tag, errText); applied {
			return job, &conv, nil
		}
	}
	return job, nil, nil
}

// RunJob executes one queued job: a single inference attempt whose
// outcome is written back to the job row. The worker never touches
// conversation state; delivery happens on ResolveJob.
func (s *Service) RunJob(ctx context.Context, jobID string) error {
	_ = s.repo.UpdateJobStatusRunning(ctx, jobID)

	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	provider, err := s.registry.Get(ctx, s.providerName, s.providerModel)
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	reply, err := provider.Generate(ctx, job.Prompt)
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	return s.repo.MarkJobSucceeded(ctx, jobID, reply)
}
