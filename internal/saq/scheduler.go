package saq

import (
	"sync"
	"time"

	"github.com/paysec-tools/saqadvisor_backend/internal/models"
)

// DefaultRenderDelay coalesces rapid answer edits into one document render
const DefaultRenderDelay = 2 * time.Second

// RenderFunc regenerates the rendered document for a questionnaire type
type RenderFunc func(qType models.QuestionnaireType)

// RenderScheduler debounces document regeneration per questionnaire type.
// Arming an already-armed type resets its timer; a type currently mid-render
// is skipped from new debounce cycles so the same document is never rendered
// concurrently. Different types debounce independently.
type RenderScheduler struct {
	mu        sync.Mutex
	delay     time.Duration
	render    RenderFunc
	timers    map[models.QuestionnaireType]*time.Timer
	rendering map[models.QuestionnaireType]bool
	closed    bool
}

// NewRenderScheduler creates a scheduler firing render after delay
func NewRenderScheduler(delay time.Duration, render RenderFunc) *RenderScheduler {
	if delay <= 0 {
		delay = DefaultRenderDelay
	}
	return &RenderScheduler{
		delay:     delay,
		render:    render,
		timers:    map[models.QuestionnaireType]*time.Timer{},
		rendering: map[models.QuestionnaireType]bool{},
	}
}

// Arm schedules (or reschedules) a render for a questionnaire type.
// Returns false when the arm was skipped: scheduler closed or type mid-render.
func (s *RenderScheduler) Arm(qType models.QuestionnaireType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.rendering[qType] {
		return false
	}

	if timer, ok := s.timers[qType]; ok {
		timer.Stop()
	}
	s.timers[qType] = time.AfterFunc(s.delay, func() {
		s.fire(qType)
	})
	return true
}

// fire transitions a type into its render, guarding against cancellation
// races between the timer callback and Cancel/Close.
func (s *RenderScheduler) fire(qType models.QuestionnaireType) {
	s.mu.Lock()
	if s.closed || s.timers[qType] == nil {
		s.mu.Unlock()
		return
	}
	delete(s.timers, qType)
	s.rendering[qType] = true
	render := s.render
	s.mu.Unlock()

	if render != nil {
		render(qType)
	}

	s.mu.Lock()
	delete(s.rendering, qType)
	s.mu.Unlock()
}

// Cancel drops any pending render for a type without running it
func (s *RenderScheduler) Cancel(qType models.QuestionnaireType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[qType]; ok {
		timer.Stop()
		delete(s.timers, qType)
	}
}

// Pending reports whether a render is scheduled for a type
func (s *RenderScheduler) Pending(qType models.QuestionnaireType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[qType]
	return ok
}

// Rendering reports whether a type is currently mid-render
func (s *RenderScheduler) Rendering(qType models.QuestionnaireType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendering[qType]
}

// Close cancels all pending timers. In-flight renders run to completion but
// their results are the render function's concern; no new timers can be
// armed afterwards.
func (s *RenderScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for qType, timer := range s.timers {
		timer.Stop()
		delete(s.timers, qType)
	}
}
