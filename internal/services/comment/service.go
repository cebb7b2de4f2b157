package comment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stormhead-org/backoffice/internal/event"
	"github.com/stormhead-org/backoffice/internal/lib"
	"github.com/stormhead-org/backoffice/internal/metrics"
	"github.com/stormhead-org/backoffice/internal/orm"
	"github.com/stormhead-org/backoffice/internal/services"
)

type CommentServiceImpl struct {
	db      *orm.PostgresClient
	log     *zap.Logger
	thread  orm.Thread
	broker  event.Publisher
	metrics *metrics.Metrics
}

// NewCommentService serves one thread. broker and metrics may be nil.
func NewCommentService(db *orm.PostgresClient, log *zap.Logger, thread orm.Thread, broker event.Publisher, m *metrics.Metrics) services.CommentService {
	return &CommentServiceImpl{
		db:      db,
		log:     log.With(zap.String("thread", thread.Name)),
		thread:  thread,
		broker:  broker,
		metrics: m,
	}
}

func (s *CommentServiceImpl) ListComments(ctx context.Context, input services.ListCommentsInput) (*services.CommentPage, error) {
	sort := input.Sort
	if sort == "" {
		sort = orm.CommentSortCreatedAt
	}

	order := input.Order
	if order == "" {
		switch {
		case sort == orm.CommentSortPopular:
			order = lib.OrderDesc
		case input.ParentID != nil:
			order = lib.OrderAsc
		default:
			order = lib.OrderDesc
		}
	}

	request := lib.ListRequest{
		Query: lib.ListQuery{
			Sort:   string(sort),
			Order:  order,
			Limit:  input.Limit,
			Cursor: input.Cursor,
		},
		Base: func(tx *gorm.DB) *gorm.DB {
			return tx.Where("owner_id = ?", input.OwnerID)
		},
		Filter: func(tx *gorm.DB) *gorm.DB {
			if input.ParentID == nil {
				return tx.Where("parent_id IS NULL")
			}
			return tx.Where("parent_id = ?", *input.ParentID)
		},
		Projection: lib.Projection{Preloads: []string{"Author"}},
	}

	start := time.Now()
	result, err := s.db.SelectCommentsWithPagination(ctx, s.thread, request)
	s.metrics.ObserveList(s.thread.CommentTable, start)
	if err != nil {
		if errors.Is(err, lib.ErrInvalidArgument) || errors.Is(err, lib.ErrMalformedCursor) {
			s.log.Debug("rejected comment list request", zap.Error(err))
			return nil, err
		}
		s.log.Error("error listing comments", zap.Int64("owner_id", input.OwnerID), zap.Error(err))
		return nil, fmt.Errorf("list comments: %w", err)
	}

	liked := make(map[int64]bool)
	if input.ViewerID != nil && len(result.Items) > 0 {
		ids := make([]int64, 0, len(result.Items))
		for _, comment := range result.Items {
			ids = append(ids, comment.ID)
		}

		likes, err := s.db.SelectCommentLikesByUser(ctx, s.thread, ids, *input.ViewerID)
		if err != nil {
			s.log.Error("error selecting viewer likes", zap.Error(err))
			return nil, fmt.Errorf("select viewer likes: %w", err)
		}
		for _, like := range likes {
			liked[like.CommentID] = true
		}
	}

	views := make([]services.CommentView, 0, len(result.Items))
	for _, comment := range result.Items {
		view := services.CommentView{Comment: comment}
		if input.ViewerID != nil {
			view.IsLiked = liked[comment.ID]
			view.IsMine = comment.AuthorID == *input.ViewerID
		}
		views = append(views, view)
	}

	return &services.CommentPage{
		Items:         views,
		NextCursor:    result.NextCursor,
		TotalAll:      result.TotalAll,
		TotalFiltered: result.TotalFiltered,
	}, nil
}

func (s *CommentServiceImpl) GetComment(ctx context.Context, uid uuid.UUID) (*orm.Comment, error) {
	comment, err := s.db.SelectCommentByUID(ctx, s.thread, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Debug("comment not found", zap.String("uid", uid.String()))
		return nil, lib.ErrNotFound
	}
	if err != nil {
		s.log.Error("error selecting comment", zap.String("uid", uid.String()), zap.Error(err))
		return nil, fmt.Errorf("select comment: %w", err)
	}
	return comment, nil
}

// CreateComment inserts a root or a reply. For a reply the parent is locked,
// checked to be a root of the same owner, and its reply counter incremented
// in the same transaction.
func (s *CommentServiceImpl) CreateComment(ctx context.Context, input services.CreateCommentInput) (*orm.Comment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: content is empty", lib.ErrInvalidArgument)
	}

	comment := &orm.Comment{
		OwnerID:  input.OwnerID,
		AuthorID: input.AuthorID,
		Content:  input.Content,
		ParentID: input.ParentID,
	}

	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		if input.ParentID != nil {
			parent, err := tx.SelectCommentByIDForUpdate(ctx, s.thread, *input.ParentID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return lib.ErrParentNotFound
			}
			if err != nil {
				return err
			}
			if parent.OwnerID != input.OwnerID || !parent.IsRoot() {
				return lib.ErrParentNotFound
			}
		}

		if err := tx.InsertComment(ctx, s.thread, comment); err != nil {
			return err
		}

		if input.ParentID != nil {
			return tx.AddReplyCount(ctx, s.thread, *input.ParentID, 1)
		}
		return nil
	})
	if errors.Is(err, lib.ErrParentNotFound) {
		s.log.Debug("parent comment not found", zap.Int64p("parent_id", input.ParentID))
		s.metrics.CommentMutation(s.thread.Name, "create", "parent_not_found")
		return nil, err
	}
	if err != nil {
		s.log.Error("error creating comment", zap.Int64("owner_id", input.OwnerID), zap.Error(err))
		s.metrics.CommentMutation(s.thread.Name, "create", "error")
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.metrics.CommentMutation(s.thread.Name, "create", "ok")

	s.publish(ctx, event.COMMENT_CREATED, s.message(comment))

	created, err := s.db.SelectCommentByUID(ctx, s.thread, comment.UID)
	if err != nil {
		s.log.Error("error reloading comment", zap.String("uid", comment.UID.String()), zap.Error(err))
		return nil, fmt.Errorf("reload comment: %w", err)
	}
	return created, nil
}

// UpdateComment rewrites content only when the caller is the author. A
// missing comment and a foreign one both report false.
func (s *CommentServiceImpl) UpdateComment(ctx context.Context, input services.UpdateCommentInput) (bool, error) {
	if strings.TrimSpace(input.Content) == "" {
		return false, fmt.Errorf("%w: content is empty", lib.ErrInvalidArgument)
	}

	affected, err := s.db.UpdateCommentContent(ctx, s.thread, input.UID, input.AuthorID, input.Content)
	if err != nil {
		s.log.Error("error updating comment", zap.String("uid", input.UID.String()), zap.Error(err))
		s.metrics.CommentMutation(s.thread.Name, "update", "error")
		return false, fmt.Errorf("update comment: %w", err)
	}

	updated := affected > 0
	if !updated {
		s.metrics.CommentMutation(s.thread.Name, "update", "not_updated")
		return false, nil
	}
	s.metrics.CommentMutation(s.thread.Name, "update", "ok")

	s.publish(ctx, event.COMMENT_UPDATED, event.CommentMessage{
		Thread:   s.thread.Name,
		UID:      input.UID.String(),
		AuthorID: input.AuthorID.String(),
	})
	return true, nil
}

func (s *CommentServiceImpl) DeleteComment(ctx context.Context, input services.DeleteCommentInput) (*services.DeleteOutcome, error) {
	outcome := &services.DeleteOutcome{}
	var deleted *orm.Comment

	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		comment, err := tx.SelectCommentByUIDForUpdate(ctx, s.thread, input.UID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome.NotFound = true
			return nil
		}
		if err != nil {
			return err
		}

		if input.AuthorID != nil && *input.AuthorID != comment.AuthorID {
			outcome.Forbidden = true
			return nil
		}

		if comment.IsRoot() && comment.ReplyCount > 0 {
			outcome.BlockedDueToReplies = true
			return nil
		}

		ids := []int64{comment.ID}
		if err := tx.DeleteCommentLikesByCommentIDs(ctx, s.thread, ids); err != nil {
			return err
		}
		if _, err := tx.DeleteCommentsByIDs(ctx, s.thread, ids); err != nil {
			return err
		}
		if !comment.IsRoot() {
			if err := tx.AddReplyCount(ctx, s.thread, *comment.ParentID, -1); err != nil {
				return err
			}
		}

		outcome.Deleted = 1
		deleted = comment
		return nil
	})
	if err != nil {
		s.log.Error("error deleting comment", zap.String("uid", input.UID.String()), zap.Error(err))
		s.metrics.CommentMutation(s.thread.Name, "delete", "error")
		return nil, fmt.Errorf("delete comment: %w", err)
	}

	switch {
	case outcome.NotFound:
		s.metrics.CommentMutation(s.thread.Name, "delete", "not_found")
	case outcome.Forbidden:
		s.metrics.CommentMutation(s.thread.Name, "delete", "forbidden")
	case outcome.BlockedDueToReplies:
		s.metrics.CommentMutation(s.thread.Name, "delete", "blocked")
	default:
		s.metrics.CommentMutation(s.thread.Name, "delete", "ok")
		s.publish(ctx, event.COMMENT_DELETED, s.message(deleted))
	}

	return outcome, nil
}

// DeleteManyComments deletes every listed reply and every listed root without
// replies in one transaction. Roots with replies are reported as blocked and
// unknown uids as not found; neither aborts the batch.
func (s *CommentServiceImpl) DeleteManyComments(ctx context.Context, uids []uuid.UUID) (*services.BulkDeleteOutcome, error) {
	outcome := &services.BulkDeleteOutcome{
		Blocked:  []uuid.UUID{},
		NotFound: []uuid.UUID{},
		Skipped:  []uuid.UUID{},
	}

	unique := make([]uuid.UUID, 0, len(uids))
	seen := make(map[uuid.UUID]bool, len(uids))
	for _, uid := range uids {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		unique = append(unique, uid)
	}
	if len(unique) == 0 {
		return outcome, nil
	}

	var deleted []*orm.Comment

	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		comments, err := tx.SelectCommentsByUIDsForUpdate(ctx, s.thread, unique)
		if err != nil {
			return err
		}

		byUID := make(map[uuid.UUID]*orm.Comment, len(comments))
		for _, comment := range comments {
			byUID[comment.UID] = comment
		}

		var (
			ids     []int64
			parents = make(map[int64]int64)
		)
		for _, uid := range unique {
			comment, ok := byUID[uid]
			switch {
			case !ok:
				outcome.NotFound = append(outcome.NotFound, uid)
			case comment.IsRoot() && comment.ReplyCount > 0:
				outcome.Blocked = append(outcome.Blocked, uid)
			default:
				ids = append(ids, comment.ID)
				deleted = append(deleted, comment)
				if !comment.IsRoot() {
					parents[*comment.ParentID]++
				}
			}
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.DeleteCommentLikesByCommentIDs(ctx, s.thread, ids); err != nil {
			return err
		}
		affected, err := tx.DeleteCommentsByIDs(ctx, s.thread, ids)
		if err != nil {
			return err
		}

		parentIDs := make([]int64, 0, len(parents))
		for id := range parents {
			parentIDs = append(parentIDs, id)
		}
		slices.Sort(parentIDs)
		for _, id := range parentIDs {
			if err := tx.AddReplyCount(ctx, s.thread, id, -parents[id]); err != nil {
				return err
			}
		}

		outcome.Deleted = int(affected)
		return nil
	})
	if err != nil {
		s.log.Error("error deleting comments", zap.Int("count", len(unique)), zap.Error(err))
		s.metrics.CommentMutation(s.thread.Name, "delete_many", "error")
		return nil, fmt.Errorf("delete comments: %w", err)
	}
	s.metrics.CommentMutation(s.thread.Name, "delete_many", "ok")

	for _, comment := range deleted {
		s.publish(ctx, event.COMMENT_DELETED, s.message(comment))
	}

	return outcome, nil
}

// ToggleLike likes the comment when the user has not liked it yet and
// unlikes it otherwise. When two first likes race, the unique key on
// (comment_id, user_id) lets exactly one insert through; the loser reports
// the comment as liked without counting a second time.
func (s *CommentServiceImpl) ToggleLike(ctx context.Context, commentID int64, userID uuid.UUID) (*services.LikeOutcome, error) {
	outcome := &services.LikeOutcome{}
	var authorID uuid.UUID

	err := s.db.Transaction(ctx, func(tx *orm.PostgresClient) error {
		comment, err := tx.SelectCommentByID(ctx, s.thread, commentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome.Reason = services.LikeReasonNotFound
			return nil
		}
		if err != nil {
			return err
		}
		authorID = comment.AuthorID

		_, err = tx.SelectCommentLike(ctx, s.thread, commentID, userID)
		switch {
		case err == nil:
			affected, err := tx.DeleteCommentLike(ctx, s.thread, commentID, userID)
			if err != nil {
				return err
			}
			if affected > 0 {
				if err := tx.AddLikeCount(ctx, s.thread, commentID, -1); err != nil {
					return err
				}
			}
			outcome.Liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			inserted, err := tx.InsertCommentLikeOnce(ctx, s.thread, &orm.CommentLike{
				CommentID: commentID,
				UserID:    userID,
			})
			if err != nil {
				return err
			}
			if inserted {
				if err := tx.AddLikeCount(ctx, s.thread, commentID, 1); err != nil {
					return err
				}
			} else {
				s.log.Debug("concurrent like collapsed", zap.Int64("comment_id", commentID), zap.String("user_id", userID.String()))
			}
			outcome.Liked = true
		default:
			return err
		}

		count, err := tx.SelectCommentLikeCount(ctx, s.thread, commentID)
		if err != nil {
			return err
		}
		outcome.LikeCount = count
		outcome.OK = true
		return nil
	})
	if err != nil {
		s.log.Error("error toggling like", zap.Int64("comment_id", commentID), zap.Error(err))
		s.metrics.CommentMutation(s.thread.Name, "toggle_like", "error")
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	if !outcome.OK {
		s.metrics.CommentMutation(s.thread.Name, "toggle_like", "not_found")
		return outcome, nil
	}

	result := "unliked"
	if outcome.Liked {
		result = "liked"
	}
	s.metrics.CommentMutation(s.thread.Name, "toggle_like", result)

	s.publish(ctx, event.COMMENT_LIKE_TOGGLED, event.CommentLikeMessage{
		Thread:    s.thread.Name,
		CommentID: commentID,
		AuthorID:  authorID.String(),
		UserID:    userID.String(),
		Liked:     outcome.Liked,
		LikeCount: outcome.LikeCount,
	})

	return outcome, nil
}

func (s *CommentServiceImpl) message(comment *orm.Comment) event.CommentMessage {
	return event.CommentMessage{
		Thread:   s.thread.Name,
		UID:      comment.UID.String(),
		OwnerID:  comment.OwnerID,
		AuthorID: comment.AuthorID.String(),
	}
}

// publish runs after commit, so a broker failure is logged and not returned.
func (s *CommentServiceImpl) publish(ctx context.Context, name string, message any) {
	if s.broker == nil {
		return
	}
	if err := s.broker.WriteMessage(ctx, name, message); err != nil {
		s.log.Warn("error publishing event", zap.String("event", name), zap.Error(err))
	}
}
