package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/edulens/engagement-api/internal/analytics"
	"github.com/edulens/engagement-api/internal/dto"
	"github.com/edulens/engagement-api/internal/observability"
	"github.com/edulens/engagement-api/internal/repository"
)

// EngagementService evaluates engagement indicators over the platform's log
// and grade data.
type EngagementService interface {
	Evaluate(ctx context.Context, req dto.EngagementScoreRequest) (dto.EngagementScoreResponse, error)
	CourseSummary(ctx context.Context, courseID, userID uint, window analytics.Window) (dto.CourseEngagementSummary, error)
}

type engagementService struct {
	registry *analytics.Registry
	modules  repository.CourseModuleRepository
	events   repository.LogEventRepository
	grades   repository.GradeItemRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEngagementService builds the evaluation service.
func NewEngagementService(registry *analytics.Registry, modules repository.CourseModuleRepository, events repository.LogEventRepository, grades repository.GradeItemRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) EngagementService {
	return &engagementService{
		registry: registry,
		modules:  modules,
		events:   events,
		grades:   grades,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "engagement_service").Logger(),
		now:      time.Now,
	}
}

func (s *engagementService) Evaluate(ctx context.Context, req dto.EngagementScoreRequest) (dto.EngagementScoreResponse, error) {
	tracer := otel.Tracer("github.com/edulens/engagement-api/internal/service/engagement")
	ctx, span := tracer.Start(ctx, "engagement.evaluate")
	span.SetAttributes(
		attribute.Int64("engagement.course_id", int64(req.CourseID)),
		attribute.String("engagement.kind", req.Kind),
		attribute.String("engagement.indicator", req.Indicator),
	)
	defer span.End()

	resolver, err := s.registry.Resolve(req.Kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve_kind_failed")
		return dto.EngagementScoreResponse{}, err
	}

	cacheKey := fmt.Sprintf("engagement:%d:%s:%s:%d:%d:%d:%d",
		req.CourseID, req.Kind, req.Indicator, req.UserID, req.ModuleID, req.Start.Unix(), req.End.Unix())

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.EngagementScoreResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.ScoreCacheHits().WithLabelValues(req.Indicator).Inc()
				span.SetAttributes(attribute.Bool("engagement.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read score cache")
			span.RecordError(err)
		}
	}

	engine := analytics.NewEngine(req.CourseID, resolver, s.modules, s.events, s.grades, s.logger)
	sample := analytics.Sample{
		UserID:   req.UserID,
		ModuleID: req.ModuleID,
		Window:   analytics.Window{Start: req.Start, End: req.End},
	}

	result, err := engine.Score(ctx, analytics.Indicator(req.Indicator), sample)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "score_failed")
		return dto.EngagementScoreResponse{}, err
	}

	response := dto.EngagementScoreResponse{
		CourseID:   req.CourseID,
		Kind:       req.Kind,
		Indicator:  req.Indicator,
		UserID:     req.UserID,
		ModuleID:   req.ModuleID,
		Applicable: result.Applicable,
		Start:      req.Start,
		End:        req.End,
		ComputedAt: s.now().UTC(),
	}
	if result.Applicable {
		value := result.Value
		response.Score = &value
	}

	observability.ScoresComputed().
		WithLabelValues(req.Kind, req.Indicator, strconv.FormatBool(result.Applicable)).
		Inc()
	span.SetAttributes(attribute.Bool("engagement.applicable", result.Applicable))

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store score cache")
			}
		}
	}

	return response, nil
}

func (s *engagementService) CourseSummary(ctx context.Context, courseID, userID uint, window analytics.Window) (dto.CourseEngagementSummary, error) {
	tracer := otel.Tracer("github.com/edulens/engagement-api/internal/service/engagement")
	ctx, span := tracer.Start(ctx, "engagement.course_summary")
	span.SetAttributes(
		attribute.Int64("engagement.course_id", int64(courseID)),
		attribute.Int64("engagement.user_id", int64(userID)),
	)
	defer span.End()

	summary := dto.CourseEngagementSummary{
		CourseID:   courseID,
		UserID:     userID,
		Start:      window.Start,
		End:        window.End,
		ComputedAt: s.now().UTC(),
	}
	sample := analytics.Sample{UserID: userID, Window: window}

	for _, kind := range s.registry.Kinds() {
		resolver, err := s.registry.Resolve(kind)
		if err != nil {
			span.RecordError(err)
			return dto.CourseEngagementSummary{}, err
		}

		// one engine per kind so the log cache is built once and shared by
		// both indicator evaluations
		engine := analytics.NewEngine(courseID, resolver, s.modules, s.events, s.grades, s.logger)
		entry := dto.KindEngagement{Kind: kind}

		cognitive, err := engine.CognitiveScore(ctx, sample)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cognitive_score_failed")
			return dto.CourseEngagementSummary{}, err
		}
		if cognitive.Applicable {
			value := cognitive.Value
			entry.CognitiveDepth = &value
		}

		social, err := engine.SocialScore(ctx, sample)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "social_score_failed")
			return dto.CourseEngagementSummary{}, err
		}
		if social.Applicable {
			value := social.Value
			entry.SocialBreadth = &value
		}

		summary.Kinds = append(summary.Kinds, entry)
	}

	return summary, nil
}
