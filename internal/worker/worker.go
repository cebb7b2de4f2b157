package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	eventpkg "github.com/stormhead-org/backoffice/internal/event"
	"github.com/stormhead-org/backoffice/internal/lib"
	ormpkg "github.com/stormhead-org/backoffice/internal/orm"
)

// Reader yields broker events one at a time. KafkaClient implements it.
type Reader interface {
	ReadMessage(ctx context.Context) (string, []byte, error)
}

const readBackoff = time.Second

// Worker consumes comment events and keeps author reputation current.
type Worker struct {
	context      context.Context
	cancel       func()
	waitGroup    sync.WaitGroup
	logger       *zap.Logger
	router       *Router
	brokerClient Reader
	database     *ormpkg.PostgresClient
}

func NewWorker(logger *zap.Logger, brokerClient Reader, database *ormpkg.PostgresClient) *Worker {
	context, cancel := context.WithCancel(context.Background())
	this := &Worker{
		context:      context,
		cancel:       cancel,
		logger:       logger,
		brokerClient: brokerClient,
		database:     database,
	}
	this.router = NewRouter(
		map[string][]EventHandler{
			eventpkg.COMMENT_CREATED: {
				this.CommentChangedHandler,
			},
			eventpkg.COMMENT_DELETED: {
				this.CommentChangedHandler,
			},
			eventpkg.COMMENT_LIKE_TOGGLED: {
				this.CommentLikeToggledHandler,
			},
		},
	)
	return this
}

func (this *Worker) Start() error {
	this.logger.Info("starting reputation worker")

	this.waitGroup.Add(1)
	go this.worker()
	return nil
}

func (this *Worker) Stop() error {
	this.logger.Info("stopping reputation worker")

	this.cancel()
	this.waitGroup.Wait()
	return nil
}

func (this *Worker) worker() {
	defer this.waitGroup.Done()

	for {
		event, data, err := this.brokerClient.ReadMessage(this.context)
		if err != nil {
			if this.context.Err() != nil {
				return
			}
			this.logger.Error("error receiving kafka message", zap.Error(err))

			select {
			case <-this.context.Done():
				return
			case <-time.After(readBackoff):
			}
			continue
		}

		err = this.router.Handle(this.context, event, data)
		if err != nil {
			this.logger.Error("error handling kafka message", zap.String("event", event), zap.Error(err))
			continue
		}
	}
}

func (this *Worker) CommentChangedHandler(ctx context.Context, data []byte) error {
	var message eventpkg.CommentMessage
	err := sonic.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	return this.refreshReputation(ctx, message.AuthorID)
}

func (this *Worker) CommentLikeToggledHandler(ctx context.Context, data []byte) error {
	var message eventpkg.CommentLikeMessage
	err := sonic.Unmarshal(data, &message)
	if err != nil {
		return err
	}

	return this.refreshReputation(ctx, message.AuthorID)
}

// refreshReputation recomputes the score from the current counters, so
// replayed or reordered events converge on the same value.
func (this *Worker) refreshReputation(ctx context.Context, rawAuthorID string) error {
	authorID, err := uuid.Parse(rawAuthorID)
	if err != nil {
		return fmt.Errorf("parse author id: %w", err)
	}

	user, err := this.database.SelectUserByID(ctx, authorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		this.logger.Debug("author is gone, skipping reputation", zap.String("author_id", rawAuthorID))
		return nil
	}
	if err != nil {
		return err
	}

	reputation, err := lib.CalculateUserReputation(ctx, this.database, user)
	if err != nil {
		return err
	}

	err = this.database.UpdateUserReputation(ctx, user.ID, reputation)
	if err != nil {
		return err
	}

	this.logger.Info("updated reputation", zap.String("author_id", rawAuthorID), zap.Int64("reputation", reputation))
	return nil
}
