package saq

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// renderRecorder collects render invocations across goroutines
type renderRecorder struct {
	mu    sync.Mutex
	fired []models.QuestionnaireType
}

func (r *renderRecorder) render(qType models.QuestionnaireType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, qType)
}

func (r *renderRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func TestRenderScheduler_DebouncesRapidArms(t *testing.T) {
	rec := &renderRecorder{}
	s := NewRenderScheduler(30*time.Millisecond, rec.render)
	defer s.Close()

	// Rapid re-arms coalesce into one render
	for i := 0; i < 5; i++ {
		require.True(t, s.Arm(models.QuestionnaireTypeSAQA))
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, s.Pending(models.QuestionnaireTypeSAQA))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
	assert.False(t, s.Pending(models.QuestionnaireTypeSAQA))
}

func TestRenderScheduler_TypesDebounceIndependently(t *testing.T) {
	rec := &renderRecorder{}
	s := NewRenderScheduler(20*time.Millisecond, rec.render)
	defer s.Close()

	require.True(t, s.Arm(models.QuestionnaireTypeSAQA))
	require.True(t, s.Arm(models.QuestionnaireTypeSAQB))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, rec.count())
}

func TestRenderScheduler_Cancel(t *testing.T) {
	rec := &renderRecorder{}
	s := NewRenderScheduler(30*time.Millisecond, rec.render)
	defer s.Close()

	require.True(t, s.Arm(models.QuestionnaireTypeSAQA))
	s.Cancel(models.QuestionnaireTypeSAQA)
	assert.False(t, s.Pending(models.QuestionnaireTypeSAQA))

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestRenderScheduler_SkipsArmWhileRendering(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	s := NewRenderScheduler(10*time.Millisecond, func(qType models.QuestionnaireType) {
		// Only the SAQ A render blocks; the SAQ B arm below fires too
		if qType == models.QuestionnaireTypeSAQA {
			close(started)
			<-block
		}
	})
	defer s.Close()

	require.True(t, s.Arm(models.QuestionnaireTypeSAQA))
	<-started
	assert.True(t, s.Rendering(models.QuestionnaireTypeSAQA))

	// Mid-render arms are rejected
	assert.False(t, s.Arm(models.QuestionnaireTypeSAQA))
	// Other types are unaffected
	assert.True(t, s.Arm(models.QuestionnaireTypeSAQB))

	close(block)
	time.Sleep(50 * time.Millisecond)
	assert.False(t, s.Rendering(models.QuestionnaireTypeSAQA))
}

func TestRenderScheduler_Close(t *testing.T) {
	rec := &renderRecorder{}
	s := NewRenderScheduler(20*time.Millisecond, rec.render)

	require.True(t, s.Arm(models.QuestionnaireTypeSAQA))
	s.Close()

	assert.False(t, s.Arm(models.QuestionnaireTypeSAQB), "closed scheduler rejects new arms")
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, rec.count(), "pending timers are cancelled on close")
}

func TestNewRenderScheduler_DefaultDelay(t *testing.T) {
	s := NewRenderScheduler(0, nil)
	defer s.Close()
	assert.Equal(t, DefaultRenderDelay, s.delay)
}
