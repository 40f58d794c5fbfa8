package kafka

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/heat"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModeration struct {
	reqs   []*dto.ModerationCheckReq
	status string
	err    error
}

func (f *fakeModeration) CheckContent(_ context.Context, req *dto.ModerationCheckReq) (*dto.ModerationResultDTO, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ModerationResultDTO{Status: f.status}, nil
}

func (f *fakeModeration) EnqueueReview(context.Context, *dto.EnqueueReviewReq) (string, error) {
	return "", nil
}

func (f *fakeModeration) GetUserStat(context.Context, uint64) (*dto.UserModerationStatDTO, error) {
	return nil, nil
}

func (f *fakeModeration) GetOverview(context.Context) (*dto.ModerationOverviewDTO, error) {
	return nil, nil
}

type statusWrite struct {
	contentType string
	id          uint64
	status      int8
}

type fakePosts struct {
	writes []statusWrite
}

func (f *fakePosts) GetPost(context.Context, uint64) (*model.Post, error) { return nil, nil }
func (f *fakePosts) GetHeatInput(context.Context, uint64) (*heat.Input, error) {
	return nil, nil
}
func (f *fakePosts) GetHeatInputs(context.Context, []uint64) ([]heat.Input, error) {
	return nil, nil
}
func (f *fakePosts) ListRecentCandidateIDs(context.Context, time.Time, int) ([]uint64, error) {
	return nil, nil
}
func (f *fakePosts) ListIDsAfter(context.Context, uint64, int) ([]uint64, error) { return nil, nil }
func (f *fakePosts) UpdateHeatScore(context.Context, uint64, float64) error      { return nil }
func (f *fakePosts) UpdateContentStatus(_ context.Context, contentType string, id uint64, status int8) error {
	f.writes = append(f.writes, statusWrite{contentType, id, status})
	return nil
}

type fakeHeat struct {
	dirty []uint64
}

func (f *fakeHeat) RefreshPostHeat(context.Context, uint64) (*dto.HeatDTO, error) { return nil, nil }
func (f *fakeHeat) BatchUpdate(context.Context, []uint64) (*dto.BatchResultDTO, error) {
	return nil, nil
}
func (f *fakeHeat) UpdateRecent(context.Context, int) (*dto.BatchResultDTO, error) { return nil, nil }
func (f *fakeHeat) UpdateAll(context.Context, int) (*dto.BatchResultDTO, error)    { return nil, nil }
func (f *fakeHeat) MarkDirty(_ context.Context, ids ...uint64) error {
	f.dirty = append(f.dirty, ids...)
	return nil
}

func TestToCanalMessage(t *testing.T) {
	msg, err := ToCanalMessage(&sarama.ConsumerMessage{Value: []byte(
		`{"table":"posts","type":"INSERT","data":[{"id":"7","user_id":"3","title":"hi","content":"body"}]}`)})
	require.NoError(t, err)
	assert.Equal(t, "posts", msg.Table)
	assert.Equal(t, uint64(7), StrToUint64(msg.Data[0]["id"]))

	_, err = ToCanalMessage(&sarama.ConsumerMessage{Value: []byte(`{"isDdl":true,"data":[{}]}`)})
	assert.ErrorIs(t, err, errSkip)
	_, err = ToCanalMessage(&sarama.ConsumerMessage{Value: []byte(`not json`)})
	assert.ErrorIs(t, err, errSkip)
}

func TestContentHandler_ModeratesInsertAndWritesStatus(t *testing.T) {
	mod := &fakeModeration{status: "rejected"}
	posts := &fakePosts{}
	router := NewCanalRouter(NewContentHandler(mod, posts, nil))

	err := router.Dispatch(context.Background(), &CanalMessage{
		Table: "posts",
		Type:  INSERT,
		Data:  []map[string]interface{}{{"id": "7", "user_id": "3", "title": "t", "content": "banned"}},
	})
	require.NoError(t, err)
	require.Len(t, mod.reqs, 1)
	assert.Equal(t, model.ContentTypePost, mod.reqs[0].ContentType)
	assert.Equal(t, uint64(7), *mod.reqs[0].ContentID)
	assert.Equal(t, []statusWrite{{model.ContentTypePost, 7, model.ContentStatusRejected}}, posts.writes)
}

func TestContentHandler_IgnoresStatusOnlyUpdate(t *testing.T) {
	mod := &fakeModeration{status: "approved"}
	posts := &fakePosts{}
	h := NewContentHandler(mod, posts, nil)

	err := h.Handle(context.Background(), &CanalMessage{
		Table: "post_comments",
		Type:  UPDATE,
		Data:  []map[string]interface{}{{"id": "9", "user_id": "3", "content": "hello", "status": "1"}},
		Old:   []map[string]interface{}{{"status": "0"}},
	})
	require.NoError(t, err)
	assert.Empty(t, mod.reqs)

	err = h.Handle(context.Background(), &CanalMessage{
		Table: "post_comments",
		Type:  UPDATE,
		Data:  []map[string]interface{}{{"id": "9", "user_id": "3", "content": "edited"}},
		Old:   []map[string]interface{}{{"content": "hello"}},
	})
	require.NoError(t, err)
	require.Len(t, mod.reqs, 1)
	assert.Equal(t, model.ContentTypeComment, mod.reqs[0].ContentType)
	assert.Equal(t, model.ContentStatusPublished, posts.writes[0].status)
}

func TestContentHandler_SkipsDeletedRows(t *testing.T) {
	mod := &fakeModeration{status: "approved"}
	h := NewContentHandler(mod, &fakePosts{}, nil)
	err := h.Handle(context.Background(), &CanalMessage{
		Table: "posts",
		Type:  INSERT,
		Data:  []map[string]interface{}{{"id": "1", "is_deleted": "1"}},
	})
	require.NoError(t, err)
	assert.Empty(t, mod.reqs)
}

func TestContentHandler_ErrorIsRetryable(t *testing.T) {
	mod := &fakeModeration{err: errors.New("db down")}
	router := NewCanalRouter(NewContentHandler(mod, &fakePosts{}, nil))
	err := router.Dispatch(context.Background(), &CanalMessage{
		Table: "posts",
		Type:  INSERT,
		Data:  []map[string]interface{}{{"id": "1", "user_id": "2", "content": "x"}},
	})
	assert.Error(t, err)
}

func TestInteractionHandler_MarksPostsDirty(t *testing.T) {
	hs := &fakeHeat{}
	mod := &fakeModeration{status: "approved"}
	router := NewCanalRouter(NewInteractionHandler(hs), NewContentHandler(mod, &fakePosts{}, nil))
	ctx := context.Background()

	require.NoError(t, router.Dispatch(ctx, &CanalMessage{
		Table: "post_votes", Type: INSERT,
		Data: []map[string]interface{}{{"user_id": "1", "post_id": "10"}, {"user_id": "2", "post_id": "11"}},
	}))
	require.NoError(t, router.Dispatch(ctx, &CanalMessage{
		Table: "collections", Type: DELETE,
		Data: []map[string]interface{}{{"user_id": "1", "post_id": "12"}},
	}))
	// 评论新增既要审核也要标记热度
	require.NoError(t, router.Dispatch(ctx, &CanalMessage{
		Table: "post_comments", Type: INSERT,
		Data: []map[string]interface{}{{"id": "5", "user_id": "1", "post_id": "13", "content": "hi"}},
	}))
	// 与热度无关的更新
	require.NoError(t, router.Dispatch(ctx, &CanalMessage{
		Table: "post_votes", Type: UPDATE,
		Data: []map[string]interface{}{{"post_id": "14"}},
		Old:  []map[string]interface{}{{"created_at": "x"}},
	}))
	require.NoError(t, router.Dispatch(ctx, &CanalMessage{Table: "users", Type: INSERT, Data: []map[string]interface{}{{}}}))

	assert.Equal(t, []uint64{10, 11, 12, 13}, hs.dirty)
	assert.Len(t, mod.reqs, 1)
}
