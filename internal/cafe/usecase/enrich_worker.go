package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"cafely-backend/internal/cafe/repository"
	"cafely-backend/pkg/ai"
)

// EnrichJob represents a job to generate an AI summary for a café
type EnrichJob struct {
	UserID string // requester; receives the result over their live connection
	CafeID string
	Name   string
	Text   string
}

// ResultSink receives enrichment results for live delivery
type ResultSink interface {
	SendToUser(userID, eventType string, payload interface{})
}

// EnrichWorkerService generates café summaries in the background. The DB cache
// is checked before every generation so each café is enriched at most once;
// the AI call itself may fall back between providers (see pkg/ai) but is never
// retried here.
type EnrichWorkerService struct {
	summaryRepo repository.SummaryRepository
	aiService   ai.EnrichmentService
	sink        ResultSink
	jobQueue    chan EnrichJob
	workerWg    sync.WaitGroup
	workerCount int
	started     bool
	mu          sync.Mutex
}

// NewEnrichWorkerService creates a new enrichment worker service
func NewEnrichWorkerService(summaryRepo repository.SummaryRepository, aiService ai.EnrichmentService, sink ResultSink, workerCount int) *EnrichWorkerService {
	if workerCount <= 0 {
		workerCount = 3
	}

	return &EnrichWorkerService{
		summaryRepo: summaryRepo,
		aiService:   aiService,
		sink:        sink,
		jobQueue:    make(chan EnrichJob, 500),
		workerCount: workerCount,
	}
}

// Start starts the enrichment workers
func (s *EnrichWorkerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	for i := 0; i < s.workerCount; i++ {
		s.workerWg.Add(1)
		go s.worker(i)
	}
	s.started = true
	log.Printf("[EnrichWorker] Started %d workers", s.workerCount)
}

// Stop stops all workers gracefully
func (s *EnrichWorkerService) Stop() {
	close(s.jobQueue)
	s.workerWg.Wait()
	log.Println("[EnrichWorker] All workers stopped")
}

func (s *EnrichWorkerService) worker(id int) {
	defer s.workerWg.Done()

	for job := range s.jobQueue {
		s.processJob(job)
	}

	log.Printf("[EnrichWorker] Worker %d stopped", id)
}

func (s *EnrichWorkerService) processJob(job EnrichJob) {
	if s.aiService == nil {
		return
	}

	// Cache hit: deliver the stored summary without touching the provider
	existing, err := s.summaryRepo.GetByCafeID(job.CafeID)
	if err != nil {
		log.Printf("[EnrichWorker] Error checking cache: %v", err)
		return
	}
	if existing != nil {
		s.sendResult(job.UserID, job.CafeID, existing.Summary, existing.Tags)
		return
	}

	ctx := context.Background()
	cafeText := fmt.Sprintf("Name: %s\n\nDetails: %s", job.Name, job.Text)

	// Bound prompt size to avoid provider token limits
	if len(cafeText) > 5000 {
		cafeText = cafeText[:5000]
	}

	summary, err := s.aiService.SummarizeCafe(ctx, cafeText)
	if err != nil {
		log.Printf("[EnrichWorker] AI error for cafe %s: %v", job.CafeID, err)
		return
	}

	tags, err := s.aiService.SuggestTags(ctx, cafeText)
	if err != nil {
		// Tags are optional decoration; the summary alone is worth caching
		log.Printf("[EnrichWorker] Tagging failed for cafe %s: %v", job.CafeID, err)
		tags = nil
	}
	tagList := strings.Join(tags, ",")

	if err := s.summaryRepo.Save(job.CafeID, summary, tagList); err != nil {
		log.Printf("[EnrichWorker] Save error: %v", err)
		return
	}

	s.sendResult(job.UserID, job.CafeID, summary, tagList)
	log.Printf("[EnrichWorker] Generated summary for %s", job.CafeID)
}

func (s *EnrichWorkerService) sendResult(userID, cafeID, summary, tags string) {
	if s.sink == nil {
		return
	}

	s.sink.SendToUser(userID, "cafe_summary", map[string]interface{}{
		"cafe_id": cafeID,
		"summary": summary,
		"tags":    tags,
	})
}

// QueueJob adds a single job to the queue (non-blocking)
func (s *EnrichWorkerService) QueueJob(job EnrichJob) bool {
	select {
	case s.jobQueue <- job:
		return true
	default:
		return false // Queue full
	}
}

// GetCachedSummary returns the cached summary for a café, if any
func (s *EnrichWorkerService) GetCachedSummary(cafeID string) (summary, tags string, found bool, err error) {
	existing, err := s.summaryRepo.GetByCafeID(cafeID)
	if err != nil {
		return "", "", false, err
	}
	if existing == nil {
		return "", "", false, nil
	}
	return existing.Summary, existing.Tags, true, nil
}
