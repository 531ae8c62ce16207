package retryscheduler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DefaultMaxRetries is the retry budget used when callers do not specify one
const DefaultMaxRetries = 3

// defaultPollInterval is how long the processing loop sleeps between ticks
// while the queue is non-empty
const defaultPollInterval = 1 * time.Second

// RateLimitInfo describes a single rate-limit rejection from the Discord API.
// It is derived from one failed response and never persisted.
type RateLimitInfo struct {
	RetryAfter time.Duration
	Global     bool
	Bucket     string
	Scope      string
}

// ExtractRateLimitInfo returns a populated descriptor if the error represents
// a rate-limit rejection, and nil for every other kind of failure. Rate
// limiting is the only condition this queue ever retries.
func ExtractRateLimitInfo(err error) *RateLimitInfo {
	if err == nil {
		return nil
	}

	// discordgo surfaces 429s as RateLimitError when automatic retrying is
	// disabled on the session
	var rateLimitErr *discordgo.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitInfo{
			RetryAfter: rateLimitErr.RetryAfter,
			Bucket:     rateLimitErr.Bucket,
		}
	}

	// Some call paths return a generic RESTError carrying the raw 429 response
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response == nil || restErr.Response.StatusCode != http.StatusTooManyRequests {
			return nil
		}

		info := &RateLimitInfo{
			Bucket: restErr.Response.Header.Get("X-RateLimit-Bucket"),
			Scope:  restErr.Response.Header.Get("X-RateLimit-Scope"),
		}

		var body struct {
			Message    string  `json:"message"`
			RetryAfter float64 `json:"retry_after"`
			Global     bool    `json:"global"`
		}
		if jsonErr := json.Unmarshal(restErr.ResponseBody, &body); jsonErr == nil && body.RetryAfter > 0 {
			info.RetryAfter = time.Duration(body.RetryAfter * float64(time.Second))
			info.Global = body.Global
			return info
		}

		// Fall back to the Retry-After header when the body is unusable
		if seconds, parseErr := strconv.ParseFloat(restErr.Response.Header.Get("Retry-After"), 64); parseErr == nil {
			info.RetryAfter = time.Duration(seconds * float64(time.Second))
		} else {
			info.RetryAfter = time.Second
		}
		info.Global = restErr.Response.Header.Get("X-RateLimit-Global") == "true"
		return info
	}

	return nil
}

// TaskStatus is a read-only snapshot of one queued task
type TaskStatus struct {
	ID           string    `json:"id"`
	ScheduledFor time.Time `json:"scheduled_for"`
	RetryCount   int       `json:"retry_count"`
}

// QueueStatus is a read-only snapshot of the retry queue for observability
type QueueStatus struct {
	Count int          `json:"count"`
	Tasks []TaskStatus `json:"tasks"`
}

type scheduledTask struct {
	id           string
	operation    func() error
	retryCount   int
	maxRetries   int
	scheduledFor time.Time
	// onExhausted is invoked once, with the final failure, when the task is
	// dropped for running out of retries. May be nil.
	onExhausted func(error)
}

// RetryScheduler is a rate-limit-aware retry queue with no knowledge of what
// a task does. It is in-memory and scoped to a single running process; a
// multi-instance deployment would need to externalize the queue into a
// durable store, which this scheduler deliberately does not provide. There is
// also no bound on queue size under sustained rate limiting.
type RetryScheduler struct {
	mu           sync.Mutex
	tasks        map[string]*scheduledTask
	loopRunning  bool
	clock        Clock
	pollInterval time.Duration
}

func NewRetryScheduler(clock Clock) *RetryScheduler {
	return &RetryScheduler{
		tasks:        make(map[string]*scheduledTask),
		clock:        clock,
		pollInterval: defaultPollInterval,
	}
}

// ScheduleRetry stores or overwrites the task under taskID, scheduled for
// now + the rate limit's retry-after, and ensures the processing loop is
// running. Rescheduling an existing taskID overwrites it, never duplicates.
// onExhausted, if non-nil, is called once with the final failure when the
// task runs out of retries; success and non-retryable failures never reach it.
func (s *RetryScheduler) ScheduleRetry(
	taskID string,
	operation func() error,
	info *RateLimitInfo,
	maxRetries int,
	onExhausted func(error),
) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scheduledFor := s.clock.Now().Add(info.RetryAfter)
	s.tasks[taskID] = &scheduledTask{
		id:           taskID,
		operation:    operation,
		maxRetries:   maxRetries,
		scheduledFor: scheduledFor,
		onExhausted:  onExhausted,
	}

	if info.Global {
		log.Printf("⚠️ Global rate limit hit - scheduling retry for task %s in %v", taskID, info.RetryAfter)
	} else {
		log.Printf("⏳ Rate limited - scheduling retry for task %s in %v (max %d retries)", taskID, info.RetryAfter, maxRetries)
	}

	if !s.loopRunning {
		s.loopRunning = true
		go s.processLoop()
	}
}

// GetQueueStatus returns a snapshot of the queue, ordered by scheduled time
func (s *RetryScheduler) GetQueueStatus() QueueStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]TaskStatus, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, TaskStatus{
			ID:           task.id,
			ScheduledFor: task.scheduledFor,
			RetryCount:   task.retryCount,
		})
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ScheduledFor.Before(tasks[j].ScheduledFor)
	})

	return QueueStatus{Count: len(tasks), Tasks: tasks}
}

// processLoop runs only while the queue is non-empty and restarts lazily on
// the next ScheduleRetry call after it exits
func (s *RetryScheduler) processLoop() {
	log.Printf("🔄 Retry queue processing started")
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.loopRunning = false
			s.mu.Unlock()
			log.Printf("🔄 Retry queue drained - processing stopped")
			return
		}

		now := s.clock.Now()
		ready := make([]*scheduledTask, 0)
		for _, task := range s.tasks {
			if !task.scheduledFor.After(now) {
				ready = append(ready, task)
			}
		}
		s.mu.Unlock()

		for _, task := range ready {
			s.executeTask(task)
		}

		s.clock.Sleep(s.pollInterval)
	}
}

func (s *RetryScheduler) executeTask(task *scheduledTask) {
	log.Printf("▶️ Executing task %s (retry %d/%d)", task.id, task.retryCount, task.maxRetries)
	err := task.operation()
	if err == nil {
		s.removeTask(task)
		log.Printf("✅ Task %s succeeded - removed from retry queue", task.id)
		return
	}

	info := ExtractRateLimitInfo(err)
	if info == nil {
		// Rate limiting is the only retryable condition this queue understands
		s.removeTask(task)
		log.Printf("❌ Task %s failed with non-retryable error - dropping: %v", task.id, err)
		return
	}

	s.mu.Lock()
	if s.tasks[task.id] != task {
		// The task was overwritten by a newer schedule while executing
		s.mu.Unlock()
		return
	}

	task.retryCount++
	if task.retryCount >= task.maxRetries {
		delete(s.tasks, task.id)
		s.mu.Unlock()
		log.Printf("❌ Task %s exhausted %d retries - dropping: %v", task.id, task.maxRetries, err)
		// Called outside the lock so the callback is free to talk back to
		// the scheduler
		if task.onExhausted != nil {
			task.onExhausted(err)
		}
		return
	}

	task.scheduledFor = s.clock.Now().Add(info.RetryAfter)
	log.Printf("⏳ Task %s rate limited again - retry %d/%d in %v", task.id, task.retryCount, task.maxRetries, info.RetryAfter)
	s.mu.Unlock()
}

func (s *RetryScheduler) removeTask(task *scheduledTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[task.id] == task {
		delete(s.tasks, task.id)
	}
}
